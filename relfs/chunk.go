package relfs

import "encoding/base64"

// ChunkSize is the fixed byte size of one stored row's data, per
// spec.md §6.2. It is process-wide immutable; changing it between
// releases only affects new writes (spec.md §6.2).
const ChunkSize = 1_843_200

// chunkCount returns the number of chunks a file of size n occupies.
// An empty file still occupies exactly one chunk (spec.md §4.4 item 7).
func chunkCount(n int) int {
	if n == 0 {
		return 1
	}
	count := n / ChunkSize
	if n%ChunkSize != 0 {
		count++
	}
	return count
}

// chunkSlice returns the i'th ChunkSize-bounded slice of data.
func chunkSlice(data []byte, i int) []byte {
	start := i * ChunkSize
	end := start + ChunkSize
	if end > len(data) {
		end = len(data)
	}
	if start > len(data) {
		start = len(data)
	}
	return data[start:end]
}

// decodeChunkData interprets one row's raw `data` column value per the
// bilingual read path of spec.md §4.3 item 3: a byte blob yields its
// bytes directly, a non-empty string decodes as legacy base64, and a
// nil or empty value yields zero bytes.
func decodeChunkData(raw any) ([]byte, error) {
	switch v := raw.(type) {
	case nil:
		return []byte{}, nil
	case []byte:
		return v, nil
	case string:
		if v == "" {
			return []byte{}, nil
		}
		return base64.StdEncoding.DecodeString(v)
	default:
		return []byte{}, nil
	}
}

// legacyDecodedLen returns the decoded byte length of a base64 string
// without actually decoding it, per spec.md §4.3's stat-time size
// formula: floor(len*3/4) - trailing_equals_count.
func legacyDecodedLen(s string) int64 {
	if s == "" {
		return 0
	}
	trailing := int64(0)
	for i := len(s) - 1; i >= 0 && s[i] == '='; i-- {
		trailing++
	}
	return int64(len(s))*3/4 - trailing
}

// rawDataLen returns the stored length of a data column value as used
// by storage_stats (spec.md §4.11): a blob's byte length, or a legacy
// string's character length (not its decoded length).
func rawDataLen(raw any) int64 {
	switch v := raw.(type) {
	case nil:
		return 0
	case []byte:
		return int64(len(v))
	case string:
		return int64(len(v))
	default:
		return 0
	}
}
