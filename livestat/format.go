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

package livestat

import (
	"fmt"
	"strings"
)

func (s *LiveStat) String() string {
	return render("LiveStat", s)
}

func (d *DeltaLiveStat) String() string {
	return render("DeltaLiveStat", &d.stat)
}

// render produces TypeName(name,mean=..,std=..,min=..,max=..,count=..)
// or TypeName(name,empty). The "name," prefix is left out when unnamed.
func render(typeName string, s *LiveStat) string {
	var b strings.Builder
	b.WriteString(typeName)
	b.WriteByte('(')
	if s.name != "" {
		b.WriteString(s.name)
		b.WriteByte(',')
	}
	if s.Empty() {
		b.WriteString("empty)")
		return b.String()
	}
	fmt.Fprintf(&b, "mean=%v,std=%v,min=%v,max=%v,count=%d)", s.mean, s.Std(), s.min, s.max, s.count)
	return b.String()
}
