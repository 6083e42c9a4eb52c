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

package curated_test

import (
	"errors"
	"testing"

	"github.com/mdm/ronald/curated"
	"github.com/mdm/ronald/test"
)

const testError = "test error: %s"
const wrappedError = "wrapped: %v"

func TestIs(t *testing.T) {
	e := curated.Errorf(testError, "foo")
	test.ExpectSuccess(t, curated.IsAny(e))
	test.ExpectSuccess(t, curated.Is(e, testError))
	test.ExpectFailure(t, curated.Is(e, wrappedError))

	// plain errors are not curated
	p := errors.New("plain")
	test.ExpectFailure(t, curated.IsAny(p))
	test.ExpectFailure(t, curated.Is(p, testError))
}

func TestHas(t *testing.T) {
	e := curated.Errorf(testError, "foo")
	w := curated.Errorf(wrappedError, e)

	test.ExpectSuccess(t, curated.Has(w, wrappedError))
	test.ExpectSuccess(t, curated.Has(w, testError))
	test.ExpectFailure(t, curated.Has(e, wrappedError))
}

func TestDeduplication(t *testing.T) {
	e := curated.Errorf("error: %v", curated.Errorf("error: %v", errors.New("inner")))
	test.ExpectEquality(t, e.Error(), "error: inner")
}
