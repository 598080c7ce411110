package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/gofrs/uuid"

	"github.com/nikmy/dynmodel/internal/model"
	"github.com/nikmy/dynmodel/pkg/errors"
	"github.com/nikmy/dynmodel/pkg/logger"
)

var ErrAlreadyExists = errors.Error("item already exists")

type api interface {
	sdk.ScanAPIClient
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *sdk.UpdateItemInput, optFns ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error)
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
}

// New builds a DynamoDB client. Every resource is a table whose
// partition key is the string attribute "id". Ids of any other type are
// stored and looked up in their printed form, so a record created with
// id 5 is found by "5".
func New(ctx context.Context, cfg Config, log logger.Logger) (*Command, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Auth.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Auth.AccessKey, cfg.Auth.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.WrapFail(err, "load aws configuration")
	}

	client := sdk.NewFromConfig(awsCfg, func(o *sdk.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &Command{client: client, log: log.With("dynamodb_command")}, nil
}

type Command struct {
	client api
	log    logger.Logger
}

func (c *Command) All(ctx context.Context, resource string) ([]model.Attributes, error) {
	pages := sdk.NewScanPaginator(c.client, &sdk.ScanInput{TableName: aws.String(resource)})

	var rows []model.Attributes
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, errors.WrapFailf(err, "scan %s", resource)
		}

		for _, item := range page.Items {
			row, err := decode(item)
			if err != nil {
				return nil, errors.WrapFailf(err, "decode %s item", resource)
			}
			rows = append(rows, row)
		}
	}

	return rows, nil
}

func (c *Command) Find(ctx context.Context, resource string, id any) (model.Attributes, error) {
	out, err := c.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: aws.String(resource),
		Key:       itemKey(id),
	})
	if err != nil {
		return nil, errors.WrapFailf(err, "get %s item", resource)
	}

	if out.Item == nil {
		return nil, &model.NotFoundError{Resource: resource, ID: id}
	}

	return decode(out.Item)
}

// Update sets every given attribute on an existing item. With nothing
// but the id to set it only checks that the item exists.
func (c *Command) Update(ctx context.Context, resource string, id any, attrs model.Attributes) error {
	expr, names, values, err := setExpression(attrs)
	if err != nil {
		return err
	}
	if expr == "" {
		_, err = c.Find(ctx, resource, id)
		return err
	}
	names["#id"] = model.KeyID

	_, err = c.client.UpdateItem(ctx, &sdk.UpdateItemInput{
		TableName:                 aws.String(resource),
		Key:                       itemKey(id),
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})

	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return &model.NotFoundError{Resource: resource, ID: id}
	}

	return errors.WrapFailf(err, "update %s item", resource)
}

// Create puts a new item, generating a UUID id when attrs carry none.
func (c *Command) Create(ctx context.Context, resource string, attrs model.Attributes) (model.Attributes, error) {
	row := make(model.Attributes, len(attrs)+1)
	for k, v := range attrs {
		row[k] = v
	}

	var id string
	if given, ok := row[model.KeyID]; ok {
		id = keyString(given)
	} else {
		generated, err := uuid.NewV4()
		if err != nil {
			return nil, errors.WrapFail(err, "generate id")
		}
		id = generated.String()
	}
	row[model.KeyID] = id

	item, err := attributevalue.MarshalMap(map[string]any(row))
	if err != nil {
		return nil, errors.WrapFailf(err, "marshal %s item", resource)
	}

	_, err = c.client.PutItem(ctx, &sdk.PutItemInput{
		TableName:                aws.String(resource),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": model.KeyID},
	})

	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return nil, errors.Wrapf(ErrAlreadyExists, "%s/%s", resource, id)
	}
	if err != nil {
		return nil, errors.WrapFailf(err, "put %s item", resource)
	}

	c.log.WithField("resource", resource).Debugf("created %s", id)
	return model.Attributes{model.KeyID: id}, nil
}

func itemKey(id any) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		model.KeyID: &types.AttributeValueMemberS{Value: keyString(id)},
	}
}

func keyString(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// setExpression builds "SET #f0 = :v0, ..." over attrs without the key
// attribute, in sorted attribute order.
func setExpression(attrs model.Attributes) (string, map[string]string, map[string]types.AttributeValue, error) {
	fields := make([]string, 0, len(attrs))
	for k := range attrs {
		if k != model.KeyID {
			fields = append(fields, k)
		}
	}
	sort.Strings(fields)

	names := make(map[string]string, len(fields)+1)
	values := make(map[string]types.AttributeValue, len(fields))
	clauses := make([]string, 0, len(fields))

	for i, f := range fields {
		n, v := "#f"+strconv.Itoa(i), ":v"+strconv.Itoa(i)

		av, err := attributevalue.Marshal(attrs[f])
		if err != nil {
			return "", nil, nil, errors.WrapFailf(err, "marshal attribute %q", f)
		}

		names[n] = f
		values[v] = av
		clauses = append(clauses, n+" = "+v)
	}

	if len(clauses) == 0 {
		return "", names, values, nil
	}
	return "SET " + strings.Join(clauses, ", "), names, values, nil
}

func decode(item map[string]types.AttributeValue) (model.Attributes, error) {
	var row map[string]any
	err := attributevalue.UnmarshalMap(item, &row)
	if err != nil {
		return nil, err
	}
	return row, nil
}
