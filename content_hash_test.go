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

import "testing"

func TestContentHashIgnoresMarkup(t *testing.T) {
	a := ContentHash([]byte("<html><body><p>Same text</p></body></html>"))
	b := ContentHash([]byte("<html><body><div><b>Same</b> text</div></body></html>"))
	if a == "" || b == "" {
		t.Fatal("hashes should not be empty")
	}
	if a != b {
		t.Error("pages with identical visible text should hash equal")
	}
}

func TestContentHashDiffersForDifferentText(t *testing.T) {
	a := ContentHash([]byte("<html><body>alpha</body></html>"))
	b := ContentHash([]byte("<html><body>beta</body></html>"))
	if a == b {
		t.Error("different text should produce different hashes")
	}
}

func TestContentHashEmptyPage(t *testing.T) {
	if got := ContentHash([]byte("<html><body><script>x()</script></body></html>")); got != "" {
		t.Errorf("page without visible text should hash to empty, got %q", got)
	}
}
