package handlers

import (
	"fmt"
	"net/url"
	"strconv"
)

// Collects query parameters problems like validate.Result does for bodies
type queryParser struct {
	values url.Values
	fields map[string]string
}

func newQueryParser(values url.Values) *queryParser {
	return &queryParser{values: values}
}

func (p *queryParser) fail(key string, message string) {
	if p.fields == nil {
		p.fields = make(map[string]string)
	}
	p.fields[key] = message
}

func (p *queryParser) String(key string) string {
	return p.values.Get(key)
}

// Int returns zero if parameter is absent
func (p *queryParser) Int(key string) int {
	raw := p.values.Get(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, "Must be an integer")
		return 0
	}
	return n
}

// IntAtMost is Int that rejects values greater than limit
func (p *queryParser) IntAtMost(key string, limit int) int {
	n := p.Int(key)
	if n > limit {
		p.fail(key, fmt.Sprintf("Value is too large (maximum %d)", limit))
		return 0
	}
	return n
}

// Bool returns nil if parameter is absent
func (p *queryParser) Bool(key string) *bool {
	raw := p.values.Get(key)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, "Must be a boolean")
		return nil
	}
	return &b
}

func (p *queryParser) Fields() map[string]string {
	return p.fields
}
