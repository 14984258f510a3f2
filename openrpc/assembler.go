// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package openrpc

import (
	"fmt"
	"reflect"
	"strings"
)

// ParamSpec describes one parameter a registered method accepts. Sample is a
// representative Go value (or a reflect.Type) used to derive a schema; it is
// never marshaled itself.
type ParamSpec struct {
	Name     string
	Sample   interface{}
	Required bool
}

// MethodSpec is the developer-facing description of one callable method,
// the input the assembler turns into an OpenRPC Method.
type MethodSpec struct {
	Name        string
	Description string
	Params      []ParamSpec
	Result      ParamSpec
	RPCURL      string
	AP2         bool
}

// Assembler builds a Document out of registered method specs.
type Assembler struct {
	title   string
	version string
	methods []MethodSpec
}

// NewAssembler starts a document builder with the given info block.
func NewAssembler(title, version string) *Assembler {
	return &Assembler{title: title, version: version}
}

// AddMethod registers one method for inclusion in the assembled document.
func (a *Assembler) AddMethod(spec MethodSpec) *Assembler {
	a.methods = append(a.methods, spec)
	return a
}

// Build emits the OpenRPC document. Each method's params are assembled as an
// array of ContentDescriptors, the preferred form; schemas are derived from
// each ParamSpec's Sample value. A method's server entry is taken from its
// RPCURL and also folded into the document-level servers list so that
// servers[0].url is a usable fallback for clients that only resolve the
// latter.
func (a *Assembler) Build() (*Document, error) {
	doc := &Document{
		OpenRPC: SpecVersion,
		Info:    Info{Title: a.title, Version: a.version},
		Methods: make([]Method, 0, len(a.methods)),
	}

	seenServers := map[string]bool{}
	for _, spec := range a.methods {
		if spec.Name == "" {
			return nil, fmt.Errorf("openrpc: method name is required")
		}
		if spec.RPCURL == "" {
			return nil, fmt.Errorf("openrpc: method %q has no rpc url", spec.Name)
		}

		method := Method{
			Name:        spec.Name,
			Description: spec.Description,
			Servers:     []Server{{URL: spec.RPCURL}},
		}

		for _, p := range spec.Params {
			method.Params = append(method.Params, ContentDescriptor{
				Name:     p.Name,
				Schema:   deriveSchema(p.Sample),
				Required: p.Required,
			})
		}

		method.Result = &ContentDescriptor{
			Name:     resultName(spec.Result.Name),
			Schema:   deriveSchema(spec.Result.Sample),
			Required: true,
		}

		if spec.AP2 {
			method.Extensions = map[string]string{ExtensionProtocol: ProtocolAP2ANP}
		}

		doc.Methods = append(doc.Methods, method)

		if !seenServers[spec.RPCURL] {
			seenServers[spec.RPCURL] = true
			doc.Servers = append(doc.Servers, Server{URL: spec.RPCURL})
		}
	}

	return doc, nil
}

func resultName(name string) string {
	if name == "" {
		return "result"
	}
	return name
}

// deriveSchema derives a Schema from a representative Go value, following
// the mapping: numeric/string/boolean primitives to their JSON Schema type,
// map-shaped values to "object", slice/array-shaped values to "array" (with
// Items derived from the element type when the sample is non-empty).
func deriveSchema(sample interface{}) *Schema {
	if sample == nil {
		return &Schema{Type: "object"}
	}

	t := reflect.TypeOf(sample)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}
	case reflect.Bool:
		return &Schema{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}
	case reflect.Map:
		return &Schema{Type: "object"}
	case reflect.Struct:
		return structSchema(t)
	case reflect.Slice, reflect.Array:
		schema := &Schema{Type: "array"}
		elem := reflect.New(t.Elem()).Elem().Interface()
		schema.Items = deriveSchema(elem)
		return schema
	default:
		return &Schema{Type: "object"}
	}
}

func structSchema(t reflect.Type) *Schema {
	schema := &Schema{Type: "object", Properties: map[string]*Schema{}}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Tag.Get("json")
		if comma := strings.IndexByte(name, ','); comma >= 0 {
			name = name[:comma]
		}
		if name == "" || name == "-" {
			name = field.Name
		}
		zero := reflect.New(field.Type).Elem().Interface()
		schema.Properties[name] = deriveSchema(zero)
		schema.Required = append(schema.Required, name)
	}
	return schema
}
