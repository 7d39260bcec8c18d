// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/a-hamm/ats/errs"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/io"
	"gopkg.in/yaml.v3"
)

// ParameterList holds a hierarchical tree of named parameters
//  Values are bool, int, float64, string, []interface{} or *ParameterList.
//  Accessors follow the "read key X with default Y" convention: missing keys return (and store) the default.
type ParameterList struct {
	name  string                 // name of this list
	vals  map[string]interface{} // values
	order []string               // keys in order of insertion
	errs  []error                // type errors found by accessors
}

// NewParameterList returns an empty list
func NewParameterList(name string) *ParameterList {
	return &ParameterList{name: name, vals: make(map[string]interface{})}
}

// ReadParameterList reads a YAML file into a list
func ReadParameterList(filename string) (o *ParameterList, err error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, errs.Wrap(errs.Config, filename, err, "cannot read parameter file")
	}
	return ParseParameterList(filename, b)
}

// ParseParameterList parses YAML data into a list
func ParseParameterList(name string, data []byte) (o *ParameterList, err error) {
	var doc yaml.Node
	if err = yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(errs.Config, name, err, "cannot parse parameter list")
	}
	o = NewParameterList(name)
	if len(doc.Content) == 0 {
		return
	}
	err = o.fromNode(doc.Content[0])
	return
}

// fromNode fills this list with the contents of a YAML mapping
func (o *ParameterList) fromNode(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errs.Configf(o.name, "parameter list must be a mapping (line %d)", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		v, err := o.value(key, node.Content[i+1])
		if err != nil {
			return err
		}
		o.Set(key, v)
	}
	return nil
}

// value converts a YAML node into a parameter value
func (o *ParameterList) value(key string, node *yaml.Node) (interface{}, error) {
	switch node.Kind {
	case yaml.MappingNode:
		sub := NewParameterList(key)
		if err := sub.fromNode(node); err != nil {
			return nil, err
		}
		return sub, nil
	case yaml.SequenceNode:
		res := make([]interface{}, len(node.Content))
		for i, n := range node.Content {
			v, err := o.value(key, n)
			if err != nil {
				return nil, err
			}
			res[i] = v
		}
		return res, nil
	case yaml.AliasNode:
		return o.value(key, node.Alias)
	case yaml.ScalarNode:
		var v interface{}
		if err := node.Decode(&v); err != nil {
			return nil, errs.Wrap(errs.Config, key, err, "cannot decode value at line %d", node.Line)
		}
		return v, nil
	}
	return nil, errs.Configf(key, "unsupported value at line %d", node.Line)
}

// Name returns the name of this list
func (o *ParameterList) Name() string { return o.name }

// Keys returns the keys in order of insertion
func (o *ParameterList) Keys() []string { return append([]string{}, o.order...) }

// Has tells whether key exists
func (o *ParameterList) Has(key string) bool {
	_, ok := o.vals[key]
	return ok
}

// Set sets key to v and returns this list
func (o *ParameterList) Set(key string, v interface{}) *ParameterList {
	if _, ok := o.vals[key]; !ok {
		o.order = append(o.order, key)
	}
	if m, ok := v.(map[string]interface{}); ok {
		sub := NewParameterList(key)
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sub.Set(k, m[k])
		}
		v = sub
	}
	o.vals[key] = v
	return o
}

// IsSublist tells whether key holds a sublist
func (o *ParameterList) IsSublist(key string) bool {
	_, ok := o.vals[key].(*ParameterList)
	return ok
}

// Sublist returns the sublist at key; an empty sublist is created if key does not exist
func (o *ParameterList) Sublist(key string) *ParameterList {
	if v, ok := o.vals[key]; ok {
		if sub, ok := v.(*ParameterList); ok {
			return sub
		}
		o.typeError(key, "sublist", v)
	}
	sub := NewParameterList(key)
	o.Set(key, sub)
	return sub
}

// Float returns the number at key or def if missing
func (o *ParameterList) Float(key string, def float64) float64 {
	v, ok := o.vals[key]
	if !ok {
		o.Set(key, def)
		return def
	}
	x, ok := toFloat(v)
	if !ok {
		o.typeError(key, "number", v)
		return def
	}
	return x
}

// Int returns the integer at key or def if missing
func (o *ParameterList) Int(key string, def int) int {
	v, ok := o.vals[key]
	if !ok {
		o.Set(key, def)
		return def
	}
	switch x := v.(type) {
	case int:
		return x
	case float64:
		if x == float64(int(x)) {
			return int(x)
		}
	}
	o.typeError(key, "integer", v)
	return def
}

// Bool returns the boolean at key or def if missing
func (o *ParameterList) Bool(key string, def bool) bool {
	v, ok := o.vals[key]
	if !ok {
		o.Set(key, def)
		return def
	}
	x, ok := v.(bool)
	if !ok {
		o.typeError(key, "boolean", v)
		return def
	}
	return x
}

// String returns the string at key or def if missing
func (o *ParameterList) String(key string, def string) string {
	v, ok := o.vals[key]
	if !ok {
		o.Set(key, def)
		return def
	}
	x, ok := v.(string)
	if !ok {
		o.typeError(key, "string", v)
		return def
	}
	return x
}

// Floats returns the list of numbers at key or def if missing
func (o *ParameterList) Floats(key string, def []float64) []float64 {
	v, ok := o.vals[key]
	if !ok {
		return def
	}
	seq, ok := v.([]interface{})
	if !ok {
		if x, ok := toFloat(v); ok {
			return []float64{x}
		}
		o.typeError(key, "list of numbers", v)
		return def
	}
	res := make([]float64, len(seq))
	for i, s := range seq {
		x, ok := toFloat(s)
		if !ok {
			o.typeError(key, "list of numbers", v)
			return def
		}
		res[i] = x
	}
	return res
}

// Strings returns the list of strings at key or def if missing
func (o *ParameterList) Strings(key string, def []string) []string {
	v, ok := o.vals[key]
	if !ok {
		return def
	}
	seq, ok := v.([]interface{})
	if !ok {
		if s, ok := v.(string); ok {
			return []string{s}
		}
		o.typeError(key, "list of strings", v)
		return def
	}
	res := make([]string, len(seq))
	for i, s := range seq {
		x, ok := s.(string)
		if !ok {
			o.typeError(key, "list of strings", v)
			return def
		}
		res[i] = x
	}
	return res
}

// RequiredFloat returns the number at key or a ConfigError if missing
func (o *ParameterList) RequiredFloat(key string) (float64, error) {
	if !o.Has(key) {
		return 0, errs.Configf(key, "required parameter is missing in list %q", o.name)
	}
	return o.Float(key, 0), o.Err()
}

// RequiredString returns the string at key or a ConfigError if missing
func (o *ParameterList) RequiredString(key string) (string, error) {
	if !o.Has(key) {
		return "", errs.Configf(key, "required parameter is missing in list %q", o.name)
	}
	return o.String(key, ""), o.Err()
}

// Params converts the numbers in the sublist at key into model parameters
func (o *ParameterList) Params(key string) (prms dbf.Params) {
	if !o.IsSublist(key) {
		return
	}
	sub := o.Sublist(key)
	for _, k := range sub.order {
		x, ok := toFloat(sub.vals[k])
		if !ok {
			sub.typeError(k, "number", sub.vals[k])
			continue
		}
		prms = append(prms, &dbf.P{N: k, V: x})
	}
	return
}

// ReadKey reads the name of a field key, following the domain-prefix convention
//  e.g. ReadKey("surface", "temperature", "temperature") reads "temperature key" with default "surface-temperature"
func (o *ParameterList) ReadKey(domain, param, def string) string {
	return o.String(param+" key", Key(domain, def))
}

// Err returns an error listing all type mismatches found by the accessors (including sublists)
func (o *ParameterList) Err() error {
	var msgs []string
	o.collect(&msgs)
	if len(msgs) == 0 {
		return nil
	}
	return errs.Configf(o.name, "invalid parameters:\n%s", strings.Join(msgs, "\n"))
}

// collect gathers error messages recursively
func (o *ParameterList) collect(msgs *[]string) {
	for _, e := range o.errs {
		*msgs = append(*msgs, e.Error())
	}
	for _, k := range o.order {
		if sub, ok := o.vals[k].(*ParameterList); ok {
			sub.collect(msgs)
		}
	}
}

// typeError records a type mismatch
func (o *ParameterList) typeError(key, expected string, v interface{}) {
	o.errs = append(o.errs, errs.Configf(key, "expected %s in list %q; got %v (%T)", expected, o.name, v, v))
}

// Print returns a text representation of this list; e.g. for messages
func (o *ParameterList) Print(indent string) (l string) {
	for _, k := range o.order {
		if sub, ok := o.vals[k].(*ParameterList); ok {
			l += io.Sf("%s%s:\n%s", indent, k, sub.Print(indent+"  "))
			continue
		}
		l += io.Sf("%s%s: %v\n", indent, k, o.vals[k])
	}
	return
}

// toFloat converts numbers (and numeric strings) to float64
func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}

// Key returns the name of a field on a domain following the domain-prefix convention
//  e.g. Key("", "temperature") = Key("domain", "temperature") = "temperature"; Key("surface", "temperature") = "surface-temperature"
func Key(domain, name string) string {
	if domain == "" || domain == "domain" {
		return name
	}
	return domain + "-" + name
}

// Domain returns the domain of key; e.g. "surface" for "surface-temperature" and "domain" for "temperature"
func Domain(key string) string {
	if i := strings.Index(key, "-"); i > 0 {
		return key[:i]
	}
	return "domain"
}
