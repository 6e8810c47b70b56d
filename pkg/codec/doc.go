// Package codec maps a [list.Sequence] to and from its binary form.
//
// # Binary Format
//
// All integers are little-endian and fixed width:
//
//	node_count          uint32
//	repeated node_count times, in head-to-tail order:
//	  payload_length    uint32
//	  payload_bytes     payload_length bytes
//	  cross_ref         int32, -1 or a position in [0, node_count)
//
// Pointer identity is replaced by position: the encoder builds a position
// table with one traversal and looks every cross-reference up in it, so
// encoding is O(n). An empty sequence encodes to the 4 bytes of a zero
// count.
//
// # Decoding
//
// The decoder allocates and links all node_count nodes before reading any
// record, because a cross-reference may point at a node that has not been
// filled in yet. A declared count above the input guard is rejected before
// allocation. Failure is total: a short read is TRUNCATED_STREAM, an
// out-of-range position INVALID_CROSS_REFERENCE, and no partially decoded
// sequence is ever returned.
//
//	var buf bytes.Buffer
//	if err := codec.Encode(&buf, seq); err != nil {
//	    return err
//	}
//	back, err := codec.Decode(&buf)
//
// [list.Sequence]: github.com/matzehuels/randlist/pkg/list.Sequence
package codec
