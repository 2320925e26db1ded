/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var paramPattern = regexp.MustCompile(`"([^"]+)" = \?`)

// fakeDynamo is an in-memory table keyed by keyAttrs. It understands the
// equality filters and statements the store generates.
type fakeDynamo struct {
	mu       sync.Mutex
	keyAttrs []string
	pageSize int
	items    map[string]map[string]types.AttributeValue
	order    []string
	calls    map[string]int
}

func newFakeDynamo(keyAttrs ...string) *fakeDynamo {
	return &fakeDynamo{
		keyAttrs: keyAttrs,
		items:    make(map[string]map[string]types.AttributeValue),
		calls:    make(map[string]int),
	}
}

func (f *fakeDynamo) key(attrs map[string]types.AttributeValue) string {
	parts := make([]string, len(f.keyAttrs))
	for i, a := range f.keyAttrs {
		parts[i] = a + "=" + attrString(attrs[a])
	}
	return strings.Join(parts, "|")
}

func attrString(av types.AttributeValue) string {
	switch tv := av.(type) {
	case *types.AttributeValueMemberS:
		return "S:" + tv.Value
	case *types.AttributeValueMemberN:
		return "N:" + tv.Value
	case *types.AttributeValueMemberBOOL:
		return fmt.Sprintf("BOOL:%v", tv.Value)
	case *types.AttributeValueMemberNULL:
		return "NULL"
	case nil:
		return "<missing>"
	default:
		return fmt.Sprintf("%T", av)
	}
}

func (f *fakeDynamo) GetItem(_ context.Context, in *sdk.GetItemInput, _ ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["GetItem"]++
	if len(in.Key) != len(f.keyAttrs) {
		return nil, fmt.Errorf("key has %d attributes, table needs %d", len(in.Key), len(f.keyAttrs))
	}
	return &sdk.GetItemOutput{Item: f.items[f.key(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["PutItem"]++
	k := f.key(in.Item)
	if _, ok := f.items[k]; !ok {
		f.order = append(f.order, k)
	}
	f.items[k] = in.Item
	return &sdk.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *sdk.DeleteItemInput, _ ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["DeleteItem"]++
	k := f.key(in.Key)
	old, ok := f.items[k]
	if !ok {
		return &sdk.DeleteItemOutput{}, nil
	}
	delete(f.items, k)
	for i, o := range f.order {
		if o == k {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return &sdk.DeleteItemOutput{Attributes: old}, nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *sdk.ScanInput, _ ...func(*sdk.Options)) (*sdk.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["Scan"]++

	want := make(map[string]string)
	for _, cond := range strings.Split(*in.FilterExpression, " AND ") {
		name, value, _ := strings.Cut(cond, " = ")
		want[in.ExpressionAttributeNames[name]] = attrString(in.ExpressionAttributeValues[value])
	}

	start := 0
	if in.ExclusiveStartKey != nil {
		last := f.key(in.ExclusiveStartKey)
		for i, k := range f.order {
			if k == last {
				start = i + 1
			}
		}
	}
	end := len(f.order)
	if f.pageSize > 0 && start+f.pageSize < end {
		end = start + f.pageSize
	}

	out := &sdk.ScanOutput{}
	for _, k := range f.order[start:end] {
		if matches(f.items[k], want) {
			out.Items = append(out.Items, f.items[k])
		}
	}
	if end < len(f.order) {
		out.LastEvaluatedKey = f.items[f.order[end-1]]
	}
	return out, nil
}

func (f *fakeDynamo) ExecuteStatement(_ context.Context, in *sdk.ExecuteStatementInput, _ ...func(*sdk.Options)) (*sdk.ExecuteStatementOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["ExecuteStatement"]++

	names := paramPattern.FindAllStringSubmatch(*in.Statement, -1)
	if len(names) != len(in.Parameters) {
		return nil, fmt.Errorf("statement has %d parameters, got %d", len(names), len(in.Parameters))
	}
	want := make(map[string]string, len(names))
	for i, n := range names {
		want[n[1]] = attrString(in.Parameters[i])
	}

	out := &sdk.ExecuteStatementOutput{}
	for _, k := range f.order {
		if matches(f.items[k], want) {
			out.Items = append(out.Items, f.items[k])
		}
	}
	return out, nil
}

func matches(item map[string]types.AttributeValue, want map[string]string) bool {
	for attr, v := range want {
		if attrString(item[attr]) != v {
			return false
		}
	}
	return true
}

func (f *fakeDynamo) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}
