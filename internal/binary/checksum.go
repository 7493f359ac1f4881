package binary

import "hash/crc32"

var crcTable = crc32.MakeTable(crc32.IEEE)

// CRC32 computes the CRC-32 used by compressed RTF streams (MS-OXRTFCP).
//
// The table is the standard reflected 0xEDB88320 table, but unlike
// crc32.ChecksumIEEE the register starts at zero and the result is not
// inverted.
func CRC32(data []byte) uint32 {
	return UpdateCRC32(0, data)
}

// UpdateCRC32 continues a CRC32 computation with more data.
func UpdateCRC32(crc uint32, data []byte) uint32 {
	for _, b := range data {
		crc = crcTable[byte(crc)^b] ^ (crc >> 8)
	}
	return crc
}

// VerifyCRC32 verifies data against an expected compressed-RTF checksum.
func VerifyCRC32(data []byte, expected uint32) bool {
	return CRC32(data) == expected
}
