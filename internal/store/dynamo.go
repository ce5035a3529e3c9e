package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"

	"github.com/LStepczynski/projectCatalog/internal/config"
	"github.com/LStepczynski/projectCatalog/internal/models"
	"github.com/LStepczynski/projectCatalog/pkg/apperr"
)

// DynamoAPI is the slice of the DynamoDB client this store uses. Tests
// substitute a fake.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoStore implements MetadataStore and LikeStore on DynamoDB. The client
// is safe for concurrent use and lives for the whole process.
type DynamoStore struct {
	client     DynamoAPI
	tables     map[string]string // logical table name -> physical table name
	likesTable string
	log        zerolog.Logger
}

// NewDynamoStore creates a metadata store over the configured tables.
func NewDynamoStore(client DynamoAPI, cfg *config.AWSConfig, log zerolog.Logger) *DynamoStore {
	return &DynamoStore{
		client: client,
		tables: map[string]string{
			models.TableUnpublished: cfg.UnpublishedTable,
			models.TablePublished:   cfg.PublishedTable,
		},
		likesTable: cfg.LikesTable,
		log:        log.With().Str("component", "metadata_store").Logger(),
	}
}

func (s *DynamoStore) physicalTable(table string) (string, error) {
	name, ok := s.tables[table]
	if !ok {
		return "", apperr.New(apperr.KindValidation, "unknown table %q", table)
	}
	return name, nil
}

// Put inserts or overwrites a record. Last writer wins.
func (s *DynamoStore) Put(ctx context.Context, table string, rec *models.ArticleMetadata) error {
	return s.put(ctx, table, rec, false)
}

// PutNew inserts only when the id does not already exist.
func (s *DynamoStore) PutNew(ctx context.Context, table string, rec *models.ArticleMetadata) error {
	return s.put(ctx, table, rec, true)
}

func (s *DynamoStore) put(ctx context.Context, table string, rec *models.ArticleMetadata, conditional bool) error {
	name, err := s.physicalTable(table)
	if err != nil {
		return err
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, err, "marshaling article %s", rec.ID)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(name),
		Item:      item,
	}
	if conditional {
		input.ConditionExpression = aws.String("attribute_not_exists(id)")
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return apperr.New(apperr.KindConflict, "article %s already exists in %s", rec.ID, table).WithID(rec.ID)
		}
		return apperr.Wrap(apperr.KindUnavailable, err, "putting article %s into %s", rec.ID, table).WithID(rec.ID)
	}
	return nil
}

// Get returns the record or NotFound.
func (s *DynamoStore) Get(ctx context.Context, table, id string) (*models.ArticleMetadata, error) {
	name, err := s.physicalTable(table)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(name),
		Key:       idKey(id),
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, err, "getting article %s from %s", id, table).WithID(id)
	}
	if len(out.Item) == 0 {
		return nil, apperr.New(apperr.KindNotFound, "article %s not found in %s", id, table).WithID(id)
	}

	var rec models.ArticleMetadata
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, err, "unmarshaling article %s", id).WithID(id)
	}
	return &rec, nil
}

// Update applies a partial field update behind an attribute_exists
// precondition and returns the new record.
func (s *DynamoStore) Update(ctx context.Context, table, id string, delta map[string]interface{}) (*models.ArticleMetadata, error) {
	name, err := s.physicalTable(table)
	if err != nil {
		return nil, err
	}
	if len(delta) == 0 {
		return nil, apperr.New(apperr.KindValidation, "empty update for article %s", id).WithID(id)
	}

	exprNames := make(map[string]string, len(delta))
	exprValues := make(map[string]types.AttributeValue, len(delta))
	setExpr := ""
	i := 0
	for field, val := range delta {
		if field == "id" {
			return nil, apperr.New(apperr.KindValidation, "id is immutable").WithID(id)
		}
		av, err := attributevalue.Marshal(val)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindUnavailable, err, "marshaling field %s", field).WithID(id)
		}
		namePh := fmt.Sprintf("#f%d", i)
		valPh := fmt.Sprintf(":v%d", i)
		if i > 0 {
			setExpr += ", "
		}
		setExpr += namePh + " = " + valPh
		exprNames[namePh] = field
		exprValues[valPh] = av
		i++
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(name),
		Key:                       idKey(id),
		UpdateExpression:          aws.String("SET " + setExpr),
		ConditionExpression:       aws.String("attribute_exists(id)"),
		ExpressionAttributeNames:  exprNames,
		ExpressionAttributeValues: exprValues,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, apperr.New(apperr.KindNotFound, "article %s not found in %s", id, table).WithID(id)
		}
		return nil, apperr.Wrap(apperr.KindUnavailable, err, "updating article %s in %s", id, table).WithID(id)
	}

	var rec models.ArticleMetadata
	if err := attributevalue.UnmarshalMap(out.Attributes, &rec); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, err, "unmarshaling article %s", id).WithID(id)
	}
	return &rec, nil
}

// AddLikes applies an atomic counter add so concurrent rates never lose an
// update.
func (s *DynamoStore) AddLikes(ctx context.Context, table, id string, delta int64) (*models.ArticleMetadata, error) {
	name, err := s.physicalTable(table)
	if err != nil {
		return nil, err
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(name),
		Key:                 idKey(id),
		UpdateExpression:    aws.String("ADD likes :d"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", delta)},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, apperr.New(apperr.KindNotFound, "article %s not found in %s", id, table).WithID(id)
		}
		return nil, apperr.Wrap(apperr.KindUnavailable, err, "adding %d likes to article %s", delta, id).WithID(id)
	}

	var rec models.ArticleMetadata
	if err := attributevalue.UnmarshalMap(out.Attributes, &rec); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, err, "unmarshaling article %s", id).WithID(id)
	}
	return &rec, nil
}

// Delete removes the record and returns the previous value.
func (s *DynamoStore) Delete(ctx context.Context, table, id string) (*models.ArticleMetadata, error) {
	name, err := s.physicalTable(table)
	if err != nil {
		return nil, err
	}

	out, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(name),
		Key:          idKey(id),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, err, "deleting article %s from %s", id, table).WithID(id)
	}
	if len(out.Attributes) == 0 {
		return nil, apperr.New(apperr.KindNotFound, "article %s not found in %s", id, table).WithID(id)
	}

	var rec models.ArticleMetadata
	if err := attributevalue.UnmarshalMap(out.Attributes, &rec); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, err, "unmarshaling article %s", id).WithID(id)
	}
	return &rec, nil
}

// QueryPage runs one bounded scan over a secondary index equality condition.
func (s *DynamoStore) QueryPage(ctx context.Context, table, index, key, value string, limit int32, forward bool, cursor string) ([]models.ArticleMetadata, string, error) {
	name, err := s.physicalTable(table)
	if err != nil {
		return nil, "", err
	}
	if limit < 1 {
		return nil, "", apperr.New(apperr.KindValidation, "page size limit must be >= 1, got %d", limit)
	}

	startKey, err := decodeCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(name),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String("#k = :v"),
		ExpressionAttributeNames: map[string]string{
			"#k": key,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		},
		Limit:             aws.Int32(limit),
		ScanIndexForward:  aws.Bool(forward),
		ExclusiveStartKey: startKey,
	})
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindUnavailable, err, "querying %s.%s by %s=%q", table, index, key, value)
	}

	records := make([]models.ArticleMetadata, 0, len(out.Items))
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &records); err != nil {
		return nil, "", apperr.Wrap(apperr.KindUnavailable, err, "unmarshaling query page from %s.%s", table, index)
	}

	next, err := encodeCursor(out.LastEvaluatedKey)
	if err != nil {
		return nil, "", err
	}
	return records, next, nil
}

// PutLike records a like row; a second like by the same user is a conflict.
func (s *DynamoStore) PutLike(ctx context.Context, like *models.Like) error {
	if like.ID == "" {
		like.ID = models.LikeID(like.Username, like.ArticleID)
	}

	item, err := attributevalue.MarshalMap(like)
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, err, "marshaling like %s", like.ID)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.likesTable),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return apperr.New(apperr.KindConflict, "user %s already liked article %s", like.Username, like.ArticleID).WithID(like.ArticleID)
		}
		return apperr.Wrap(apperr.KindUnavailable, err, "putting like %s", like.ID)
	}
	return nil
}

// DeleteLike removes a like row; an absent row is NotFound.
func (s *DynamoStore) DeleteLike(ctx context.Context, username, articleID string) error {
	id := models.LikeID(username, articleID)

	out, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(s.likesTable),
		Key:          idKey(id),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, err, "deleting like %s", id)
	}
	if len(out.Attributes) == 0 {
		return apperr.New(apperr.KindNotFound, "user %s has not liked article %s", username, articleID).WithID(articleID)
	}
	return nil
}

// GetLike returns the like row or NotFound.
func (s *DynamoStore) GetLike(ctx context.Context, username, articleID string) (*models.Like, error) {
	id := models.LikeID(username, articleID)

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.likesTable),
		Key:       idKey(id),
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, err, "getting like %s", id)
	}
	if len(out.Item) == 0 {
		return nil, apperr.New(apperr.KindNotFound, "user %s has not liked article %s", username, articleID).WithID(articleID)
	}

	var like models.Like
	if err := attributevalue.UnmarshalMap(out.Item, &like); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, err, "unmarshaling like %s", id)
	}
	return &like, nil
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}
