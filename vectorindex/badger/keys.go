package badger

import (
	"fmt"

	"github.com/harborai/docqa/core"
)

const chunkKeyPrefix = "chkrec"

func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkKeyPrefix, id))
}

func parseChunkKey(key []byte) (core.ID, error) {
	var id core.ID
	_, err := fmt.Sscanf(string(key), chunkKeyPrefix+":%d", &id)
	if err != nil {
		return 0, fmt.Errorf("malformed chunk key %q: %w", key, err)
	}
	return id, nil
}
