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


package vectorindex

import "errors"

var (
	// ErrOpenFuncRequired is returned when a handle is created without an open function.
	ErrOpenFuncRequired = errors.New("open function required")

	// ErrEmbedderRequired is returned when an index is created without an embedder.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrSerializationFailed indicates a chunk serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")
)
