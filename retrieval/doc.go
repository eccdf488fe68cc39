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

// Package retrieval provides hybrid retrieval over the vector index.
//
// The Retriever type combines three signals for a query:
//   - Semantic search using vector embeddings
//   - Exact metadata filtering, including per-user scoping
//   - Keyword promotion that moves literal matches ahead of purely
//     semantic ones
//
// Results are deduplicated and truncated to the requested size. Scores
// are consumed during ranking and not exposed to callers.
package retrieval
