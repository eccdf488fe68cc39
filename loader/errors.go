// Copyright 2026 Harbor AI
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


package loader

import "errors"

var (
	// ErrUnsupportedFormat is returned when a file extension is outside the
	// allowed set. This is a user-correctable error.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrLoad is returned when an underlying per-format reader fails
	// (corrupt file, encoding error). The original cause is attached.
	ErrLoad = errors.New("document load failed")
)
