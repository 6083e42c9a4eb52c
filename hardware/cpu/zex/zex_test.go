// This file is part of Ronald.
//
// Ronald is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Ronald is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Ronald.  If not, see <https://www.gnu.org/licenses/>.

package zex_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mdm/ronald/hardware/cpu/zex"
	"github.com/mdm/ronald/test"
)

// the zexdoc binary is not distributed with the source. place zexdoc.com in
// the testdata directory to enable this test.
func TestZexdoc(t *testing.T) {
	if testing.Short() {
		t.Skip("zexdoc takes several minutes")
	}

	program, err := os.ReadFile(filepath.Join("testdata", "zexdoc.com"))
	if err != nil {
		t.Skip("testdata/zexdoc.com not present")
	}

	hn, err := zex.NewHarness(program)
	test.ExpectSuccess(t, err)

	output := &strings.Builder{}
	hn.Run(output)

	// zexdoc runs 67 instruction groups and prints OK for each
	test.ExpectEquality(t, strings.Count(output.String(), "OK"), 67)
	test.ExpectFailure(t, strings.Contains(output.String(), "ERROR"))
}
