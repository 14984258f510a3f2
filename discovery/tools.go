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

package discovery

import "github.com/sage-x-project/anp/openrpc"

// Tool is one entry of the OpenAI function-calling tool array.
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction carries the method's name, description, and unmodified
// params schema, matching the shape OpenAI's tool-calling API expects.
type ToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  *openrpc.Schema `json:"parameters,omitempty"`
}

// ExportTools produces the OpenAI-tool-shape array for every method on a,
// schema unmodified.
func (a *RemoteAgent) ExportTools() []Tool {
	tools := make([]Tool, len(a.Methods))
	for i, m := range a.Methods {
		tools[i] = Tool{
			Type: "function",
			Function: ToolFunction{
				Name:        m.Name,
				Description: m.Description,
				Parameters:  m.ParamsSchema,
			},
		}
	}
	return tools
}
