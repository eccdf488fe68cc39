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


// Package vectorindex defines the embedding-indexed chunk store and the
// guarded handle that owns the process-wide index reference.
//
// The Index interface covers the operations the retrieval and ingestion
// core needs: batch add with embedding, filtered similarity search,
// metadata-filtered delete, full ID listing and delete-by-ID. The badger
// sub-package provides the persistent implementation.
//
// # The Handle
//
// Reconciliation replaces the index wholesale after delete and clear
// operations because the backing store is not trusted to reflect deletions
// within the same handle. Handle guards that swap behind a read-write
// lock: Add/Search/Delete take a read lock on the current index, Reopen
// takes the write lock to close and reconstruct it.
//
// # Serialization
//
// Chunks are stored in the MUS binary format. The serializers
// (core.ChunkMUS, core.IDMUS) are generated by cmd/musgen; run
// `go generate ./core` after changing the core types.
package vectorindex
