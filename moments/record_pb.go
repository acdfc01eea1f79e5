// Copyright 2024-2025 CardinalHQ, Inc
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package moments

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// ToStruct converts the record into a protobuf Struct for exchange with
// tools that speak protobuf.
func (r Record) ToStruct() (*structpb.Struct, error) {
	fields := make(map[string]any, len(r))
	for k, v := range r {
		fields[k] = v
	}
	return structpb.NewStruct(fields)
}

// RecordFromStruct is the inverse of Record.ToStruct. Every field must
// hold a number.
func RecordFromStruct(s *structpb.Struct) (Record, error) {
	r := make(Record, len(s.GetFields()))
	for k, v := range s.GetFields() {
		nv, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("statistics record: field %q is not a number", k)
		}
		r[k] = nv.NumberValue
	}
	return r, nil
}
