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

// Package curated is a helper package for the error type. A curated error
// keeps the pattern string it was created with, meaning that errors deep in
// an error chain can be identified precisely with the Is() and Has()
// functions, without resorting to string comparison at the call site.
package curated
