package news

import "github.com/ryosukesatoh/morning-summary/internal/provider"

// Article fields are deliberately loose: entries missing a field are dropped
// one by one instead of failing the whole response.
const headlinesSchemaJSON = `{
  "type": "object",
  "required": ["status", "articles"],
  "properties": {
    "status": {"const": "ok"},
    "articles": {
      "type": "array",
      "items": {"type": "object"}
    }
  }
}`

var headlinesSchema = provider.MustCompileSchema("newsapi-top-headlines.json", headlinesSchemaJSON)
