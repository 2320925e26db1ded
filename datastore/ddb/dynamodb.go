/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/recordkit/errors"
	"github.com/suparena/recordkit/identity"
	"github.com/suparena/recordkit/logging"
	"github.com/suparena/recordkit/registry"
	"github.com/suparena/recordkit/stmtcache"
	"github.com/suparena/recordkit/storagemodels"
)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	Scan(ctx context.Context, params *sdk.ScanInput, optFns ...func(*sdk.Options)) (*sdk.ScanOutput, error)
	ExecuteStatement(ctx context.Context, params *sdk.ExecuteStatementInput, optFns ...func(*sdk.Options)) (*sdk.ExecuteStatementOutput, error)
}

var _ API = (*sdk.Client)(nil)

// Store implements datastore.DataStore[T] by using AWS DynamoDB as the underlying data store.
type Store[T any, PT identity.Ptr[T]] struct {
	client    API
	tableName string
	model     *identity.Model
	prepared  bool
	plans     *stmtcache.Cache[*plan]

	// keyMap holds the single-table templates registered for T, if any.
	keyMap map[string]string
	// keyAttrs are the attributes forming the table key.
	keyAttrs []string
	// keyTemplates is keyMap restricted to keyAttrs.
	keyTemplates map[string]string
}

// Option configures a Store.
type Option func(*options)

type options struct {
	prepared bool
	keyAttrs []string
}

// WithPreparedStatements switches lookups to parameterized PartiQL statements.
func WithPreparedStatements(enabled bool) Option {
	return func(o *options) {
		o.prepared = enabled
	}
}

// WithKeyAttributes names the table key attributes produced by the type's key
// map. Defaults to PK and SK.
func WithKeyAttributes(attrs ...string) Option {
	return func(o *options) {
		o.keyAttrs = attrs
	}
}

// NewDynamoDBClient initializes a DynamoDB client using AWS credentials. Empty
// keys fall back to the default credential chain; a non-empty endpoint
// targets DynamoDB Local or another compatible service.
func NewDynamoDBClient(ctx context.Context, awsAccessKey, awsSecretKey, awsRegion, endpoint string) (*sdk.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(awsRegion)}
	if awsAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := sdk.NewFromConfig(cfg, func(o *sdk.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	logging.L().Info().Str("region", awsRegion).Str("endpoint", endpoint).Msg("DynamoDB client initialized")
	return client, nil
}

// New constructs a Store for type T on the given table.
func New[T any, PT identity.Ptr[T]](client API, tableName string, opts ...Option) (*Store[T, PT], error) {
	m, err := identity.ModelFor[T]()
	if err != nil {
		return nil, err
	}
	o := options{keyAttrs: []string{"PK", "SK"}}
	for _, opt := range opts {
		opt(&o)
	}

	d := &Store[T, PT]{
		client:    client,
		tableName: tableName,
		model:     m,
		prepared:  o.prepared,
		plans:     stmtcache.New[*plan](),
	}

	if keyMap, ok := registry.KeyMapFor(m); ok {
		if err := checkMacros(m, keyMap); err != nil {
			return nil, err
		}
		d.keyMap = keyMap
		d.keyTemplates = make(map[string]string)
		for _, a := range o.keyAttrs {
			tmpl, ok := keyMap[a]
			if !ok {
				continue
			}
			for _, match := range macroPattern.FindAllStringSubmatch(tmpl, -1) {
				if !slices.Contains(m.PrimaryKey, match[1]) {
					return nil, errors.NewModelError(m.Name,
						fmt.Sprintf("key attribute %s uses non-key column %q", a, match[1]))
				}
			}
			d.keyAttrs = append(d.keyAttrs, a)
			d.keyTemplates[a] = tmpl
		}
		if len(d.keyAttrs) == 0 {
			return nil, errors.NewModelError(m.Name, "key map defines none of the table key attributes")
		}
	} else {
		if len(m.PrimaryKey) > 2 {
			return nil, errors.NewModelError(m.Name, "more than two key columns need a registered key map")
		}
		d.keyAttrs = m.PrimaryKey
	}

	logging.L().Debug().Str("model", m.Name).Str("table", tableName).Strs("keyAttrs", d.keyAttrs).Msg("dynamodb store ready")
	return d, nil
}

// NewDynamodbDataStore builds a client from static credentials and constructs
// a Store for type T.
func NewDynamodbDataStore[T any, PT identity.Ptr[T]](ctx context.Context, awsAccessKey, awsSecretKey, awsRegion, awsDDBTableName string, opts ...Option) (*Store[T, PT], error) {
	client, err := NewDynamoDBClient(ctx, awsAccessKey, awsSecretKey, awsRegion, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}
	return New[T, PT](client, awsDDBTableName, opts...)
}

// Find retrieves an entity by primary key.
func (d *Store[T, PT]) Find(ctx context.Context, key ...any) (*T, error) {
	lookup, err := storagemodels.KeyLookup(d.model, key...)
	if err != nil {
		return nil, err
	}
	return d.FindBy(ctx, lookup)
}

// FindBy retrieves the first item of type T matching lookup.
func (d *Store[T, PT]) FindBy(ctx context.Context, lookup storagemodels.Lookup) (*T, error) {
	if err := lookup.Validate(d.model); err != nil {
		return nil, err
	}

	key := stmtcache.NewKey(d.model, lookup.Columns(), d.prepared)
	p, err := d.plans.GetOrCreate(key, func() (*plan, error) {
		return d.buildPlan(key)
	})
	if err != nil {
		return nil, err
	}

	var item map[string]types.AttributeValue
	switch p.kind {
	case getPlan:
		item, err = d.getItem(ctx, lookup)
	case scanPlan:
		item, err = d.scan(ctx, p, lookup)
	default:
		item, err = d.execute(ctx, p, lookup)
	}
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.NewNotFoundError(d.model.Name, fmt.Sprint(lookup.Args(p.columns)...))
	}

	out := new(T)
	e := PT(out)
	if err := decodeItem(d.model, item, e); err != nil {
		return nil, err
	}
	identity.MarkPersisted(e)
	return out, nil
}

func (d *Store[T, PT]) getItem(ctx context.Context, lookup storagemodels.Lookup) (map[string]types.AttributeValue, error) {
	key, err := d.keyFor(lookup)
	if err != nil {
		return nil, err
	}
	out, err := d.client.GetItem(ctx, &sdk.GetItemInput{
		TableName:      &d.tableName,
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem error: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return out.Item, nil
}

func (d *Store[T, PT]) scan(ctx context.Context, p *plan, lookup storagemodels.Lookup) (map[string]types.AttributeValue, error) {
	values := map[string]types.AttributeValue{
		":t": &types.AttributeValueMemberS{Value: d.model.Name},
	}
	for i, c := range p.columns {
		av, err := marshalValue(lookup[c])
		if err != nil {
			return nil, err
		}
		values[fmt.Sprintf(":v%d", i)] = av
	}

	input := &sdk.ScanInput{
		TableName:                 &d.tableName,
		FilterExpression:          &p.filter,
		ExpressionAttributeNames:  p.names,
		ExpressionAttributeValues: values,
	}
	for {
		out, err := d.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("Scan error: %w", err)
		}
		if len(out.Items) > 0 {
			return out.Items[0], nil
		}
		if len(out.LastEvaluatedKey) == 0 {
			return nil, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func (d *Store[T, PT]) execute(ctx context.Context, p *plan, lookup storagemodels.Lookup) (map[string]types.AttributeValue, error) {
	params := []types.AttributeValue{&types.AttributeValueMemberS{Value: d.model.Name}}
	for _, c := range p.columns {
		av, err := marshalValue(lookup[c])
		if err != nil {
			return nil, err
		}
		params = append(params, av)
	}

	input := &sdk.ExecuteStatementInput{
		Statement:  &p.statement,
		Parameters: params,
	}
	for {
		out, err := d.client.ExecuteStatement(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("ExecuteStatement error: %w", err)
		}
		if len(out.Items) > 0 {
			return out.Items[0], nil
		}
		if out.NextToken == nil {
			return nil, nil
		}
		input.NextToken = out.NextToken
	}
}

// Save puts the entity's item and marks the entity persisted.
func (d *Store[T, PT]) Save(ctx context.Context, entity *T) error {
	e := PT(entity)
	if !identity.KeyPresent(e) {
		return fmt.Errorf("save %s: %w", d.model.Name, errors.ErrNoPrimaryKey)
	}

	item, err := encodeItem(d.model, d.keyMap, e)
	if err != nil {
		return err
	}

	_, err = d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: &d.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("PutItem failed: %w", err)
	}
	identity.MarkPersisted(e)
	return nil
}

// Delete removes a persisted entity's item.
func (d *Store[T, PT]) Delete(ctx context.Context, entity *T) error {
	e := PT(entity)
	if !e.Identity().Persisted() {
		return fmt.Errorf("delete %s: %w", d.model.Name, errors.ErrNotPersisted)
	}
	lookup, err := storagemodels.EntityLookup(e)
	if err != nil {
		return err
	}
	key, err := d.keyFor(lookup)
	if err != nil {
		return err
	}

	out, err := d.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName:    &d.tableName,
		Key:          key,
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return fmt.Errorf("failed to delete item in DynamoDB: %w", err)
	}
	if len(out.Attributes) == 0 {
		return errors.NewNotFoundError(d.model.Name, fmt.Sprint(lookup.Args(d.model.PrimaryKey)...))
	}
	return nil
}

// Plans exposes the lookup plan cache.
func (d *Store[T, PT]) Plans() storagemodels.PlanStats {
	return d.plans
}

// keyFor builds the table key of the row identified by a primary key lookup.
func (d *Store[T, PT]) keyFor(lookup storagemodels.Lookup) (map[string]types.AttributeValue, error) {
	key := make(map[string]types.AttributeValue, len(d.keyAttrs))
	if d.keyMap != nil {
		expanded, err := expandMacros(d.keyTemplates, lookup)
		if err != nil {
			return nil, err
		}
		for a, v := range expanded {
			key[a] = &types.AttributeValueMemberS{Value: v}
		}
		return key, nil
	}

	for _, a := range d.keyAttrs {
		av, err := marshalValue(lookup[a])
		if err != nil {
			return nil, err
		}
		key[a] = av
	}
	return key, nil
}

func marshalValue(v any) (types.AttributeValue, error) {
	nv, _ := identity.Normalize(v)
	av, err := attributevalue.Marshal(nv)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %v: %w", v, err)
	}
	return av, nil
}
