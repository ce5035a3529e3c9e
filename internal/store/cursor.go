package store

import (
	"encoding/base64"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/LStepczynski/projectCatalog/pkg/apperr"
)

// Continuation cursors are the DynamoDB LastEvaluatedKey round-tripped
// through JSON and base64 so callers can treat them as opaque strings.

func encodeCursor(key map[string]types.AttributeValue) (string, error) {
	if len(key) == 0 {
		return "", nil
	}

	var plain map[string]interface{}
	if err := attributevalue.UnmarshalMap(key, &plain); err != nil {
		return "", apperr.Wrap(apperr.KindUnavailable, err, "encoding continuation cursor")
	}

	raw, err := json.Marshal(plain)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnavailable, err, "encoding continuation cursor")
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func decodeCursor(cursor string) (map[string]types.AttributeValue, error) {
	if cursor == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "malformed continuation cursor")
	}

	var plain map[string]interface{}
	if err := json.Unmarshal(raw, &plain); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "malformed continuation cursor")
	}

	key, err := attributevalue.MarshalMap(plain)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "malformed continuation cursor")
	}
	return key, nil
}
