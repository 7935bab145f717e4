// Package codec converts between the shapes a value takes on its way to and
// from the backing store.
//
// Two codecs live here:
//
//   - the record codec packs an initialization vector (as text) and a
//     ciphertext into one persisted string and parses it back;
//   - value codecs ([ValueCodec]) turn a caller's typed value into the
//     plaintext string that gets encrypted, and back.
//
// Record layout:
//
//	IVTEXT "]" BYTE ( "|" BYTE )*
//
// where BYTE is the decimal form of one signed byte (-128..127). The IV text
// produced by the crypto package is standard base64, which can contain
// neither separator.
package codec
