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

package did

import "strings"

// SelectAuthenticationMethod returns the first entry in doc.Authentication
// that resolves to a known verification method (embedded inline or
// referenced by id), along with its fragment (the part after "#").
func SelectAuthenticationMethod(doc *Document) (VerificationMethod, string, error) {
	byID := make(map[string]VerificationMethod, len(doc.VerificationMethod))
	for _, vm := range doc.VerificationMethod {
		byID[vm.ID] = vm
	}

	for _, ref := range doc.Authentication {
		if vm, ok := byID[ref]; ok {
			return vm, fragment(vm.ID), nil
		}
	}

	return VerificationMethod{}, "", ErrNoAuthenticationMethod
}

// VerificationMethodByFragment finds a verification method whose id ends in
// "#<fragment>".
func VerificationMethodByFragment(doc *Document, fragment string) (VerificationMethod, error) {
	for _, vm := range doc.VerificationMethod {
		if strings.HasSuffix(vm.ID, "#"+fragment) {
			return vm, nil
		}
	}
	return VerificationMethod{}, ErrVerificationMethodNotFound
}

func fragment(id string) string {
	if i := strings.LastIndexByte(id, '#'); i >= 0 {
		return id[i+1:]
	}
	return id
}
