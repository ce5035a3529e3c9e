package models

import "fmt"

// Like records that a user liked a published article. Its existence is the
// fact; the likes counter on the article row is kept equal to the count of
// these rows, eventually.
type Like struct {
	ID        string `json:"id" dynamodbav:"id"` // "{username}#{articleId}"
	Username  string `json:"username" dynamodbav:"username"`
	ArticleID string `json:"articleId" dynamodbav:"articleId"`
	CreatedAt int64  `json:"createdAt" dynamodbav:"createdAt"`
}

// LikeID builds the composite key for a like row.
func LikeID(username, articleID string) string {
	return fmt.Sprintf("%s#%s", username, articleID)
}
