package badger

// Key layout
//
// Prefix  Key           Value
// ========================================================
// "h:"    h:<path>      stats.PathStats (JSON)
//
// One entry per request target. Listing everything is a prefix scan over
// "h:".

const prefixHits = "h:"

func keyHits(path string) []byte {
	return []byte(prefixHits + path)
}

func pathFromKey(key []byte) string {
	return string(key[len(prefixHits):])
}
