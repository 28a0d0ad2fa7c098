// Copyright 2025 Agentic World, LLC (Sherin Thomas)
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

package sandboa

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ContentHash computes an xxHash digest of a page's normalized visible
// text. Two pages with byte-identical visible text produce the same hash,
// which lets a session flag exact duplicates; it is never used to skip
// pages.
func ContentHash(htmlBody []byte) string {
	text := extractAllText(htmlBody)
	if text == "" {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(text))
}
