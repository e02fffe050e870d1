package testutils

import "encoding/binary"

// ICCProfile builds a minimal valid ICC profile with the given data color
// space signature and a 'desc' tag holding desc.
func ICCProfile(signature, desc string) []byte {
	const header = 128
	tagTable := 4 + 12
	descTag := 12 + len(desc) + 1
	size := header + tagTable + descTag

	buf := make([]byte, size)
	binary.BigEndian.PutUint32(buf[0:4], uint32(size))
	copy(buf[4:8], "lcms")
	binary.BigEndian.PutUint32(buf[8:12], 0x02100000)
	copy(buf[12:16], "mntr")
	copy(buf[16:20], padSignature(signature))
	copy(buf[20:24], "XYZ ")
	copy(buf[36:40], "acsp")

	binary.BigEndian.PutUint32(buf[header:], 1)
	entry := header + 4
	copy(buf[entry:entry+4], "desc")
	binary.BigEndian.PutUint32(buf[entry+4:], uint32(header+tagTable))
	binary.BigEndian.PutUint32(buf[entry+8:], uint32(descTag))

	tag := buf[header+tagTable:]
	copy(tag[0:4], "desc")
	binary.BigEndian.PutUint32(tag[8:12], uint32(len(desc)+1))
	copy(tag[12:], desc)
	return buf
}

func padSignature(sig string) string {
	for len(sig) < 4 {
		sig += " "
	}
	return sig[:4]
}
