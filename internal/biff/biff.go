// Package biff writes minimal single-sheet BIFF8 workbooks (legacy .xls)
// wrapped in an OLE2 compound file. It covers what readers need to recover
// cell values: shared strings, numbers and row extents. Formatting, formulas
// and multiple sheets are not written.
package biff

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf16"
)

const (
	recBOF        = 0x0809
	recEOF        = 0x000a
	recBoundSheet = 0x0085
	recSST        = 0x00fc
	recRow        = 0x0208
	recNumber     = 0x0203
	recLabelSST   = 0x00fd

	sectorSize   = 512
	streamCutoff = 4096

	endOfChain = 0xfffffffe
	freeSector = 0xffffffff
	fatSector  = 0xfffffffd
)

// Workbook returns the bytes of an .xls file with one sheet. Cells may be
// strings or numbers (float64 or int). Empty rows are left out of the sheet.
func Workbook(sheet string, rows [][]any) ([]byte, error) {
	stream, err := workbookStream(sheet, rows)
	if err != nil {
		return nil, err
	}
	return compoundFile("Workbook", stream), nil
}

func record(buf *bytes.Buffer, id uint16, body []byte) {
	_ = binary.Write(buf, binary.LittleEndian, [2]uint16{id, uint16(len(body))})
	buf.Write(body)
}

func bof(substream uint16) []byte {
	body := make([]byte, 16)
	binary.LittleEndian.PutUint16(body[0:], 0x0600) // BIFF8
	binary.LittleEndian.PutUint16(body[2:], substream)
	return body
}

// shortString is a BIFF8 unicode string body with 8-bit characters.
func shortString(s string) []byte {
	return append([]byte{0}, s...)
}

func workbookStream(sheet string, rows [][]any) ([]byte, error) {
	var (
		strs  []string
		index = map[string]uint32{}
		refs  uint32
	)
	for _, row := range rows {
		for _, v := range row {
			s, ok := v.(string)
			if !ok {
				continue
			}
			refs++
			if _, seen := index[s]; !seen {
				index[s] = uint32(len(strs))
				strs = append(strs, s)
			}
		}
	}

	globals := new(bytes.Buffer)
	record(globals, recBOF, bof(0x0005))

	bs := make([]byte, 7)
	bs[6] = byte(len(sheet))
	record(globals, recBoundSheet, append(bs, shortString(sheet)...))
	sheetPosAt := 4 + 16 + 4 // BOF record, then the BOUNDSHEET header

	sst := new(bytes.Buffer)
	_ = binary.Write(sst, binary.LittleEndian, [2]uint32{refs, uint32(len(strs))})
	for _, s := range strs {
		_ = binary.Write(sst, binary.LittleEndian, uint16(len(s)))
		sst.Write(shortString(s))
	}
	record(globals, recSST, sst.Bytes())
	record(globals, recEOF, nil)

	out := globals.Bytes()
	binary.LittleEndian.PutUint32(out[sheetPosAt:], uint32(len(out)))

	ws := new(bytes.Buffer)
	record(ws, recBOF, bof(0x0010))
	for r, row := range rows {
		if len(row) == 0 {
			continue
		}
		info := make([]byte, 16)
		binary.LittleEndian.PutUint16(info[0:], uint16(r))
		binary.LittleEndian.PutUint16(info[4:], uint16(len(row)))
		record(ws, recRow, info)

		for c, v := range row {
			cell := make([]byte, 6)
			binary.LittleEndian.PutUint16(cell[0:], uint16(r))
			binary.LittleEndian.PutUint16(cell[2:], uint16(c))
			switch v := v.(type) {
			case string:
				record(ws, recLabelSST, binary.LittleEndian.AppendUint32(cell, index[v]))
			case int:
				record(ws, recNumber, binary.LittleEndian.AppendUint64(cell, math.Float64bits(float64(v))))
			case float64:
				record(ws, recNumber, binary.LittleEndian.AppendUint64(cell, math.Float64bits(v)))
			default:
				return nil, fmt.Errorf("biff: unsupported cell type %T at row %d col %d", v, r, c)
			}
		}
	}
	record(ws, recEOF, nil)

	return append(out, ws.Bytes()...), nil
}

// compoundFile lays out header, one FAT sector, one directory sector and the
// stream. The stream is padded past the short-stream cutoff so it lives in
// regular sectors.
func compoundFile(name string, stream []byte) []byte {
	size := max(len(stream), streamCutoff)
	size = (size + sectorSize - 1) / sectorSize * sectorSize
	padded := make([]byte, size)
	copy(padded, stream)
	n := size / sectorSize

	header := make([]byte, sectorSize)
	binary.LittleEndian.PutUint32(header[0:], 0xe011cfd0)
	binary.LittleEndian.PutUint32(header[4:], 0xe11ab1a1)
	binary.LittleEndian.PutUint16(header[24:], 0x003e)
	binary.LittleEndian.PutUint16(header[26:], 0x0003)
	binary.LittleEndian.PutUint16(header[28:], 0xfffe)
	binary.LittleEndian.PutUint16(header[30:], 9) // 512 byte sectors
	binary.LittleEndian.PutUint16(header[32:], 6) // 64 byte short sectors
	binary.LittleEndian.PutUint32(header[44:], 1) // FAT sectors
	binary.LittleEndian.PutUint32(header[48:], 1) // directory start
	binary.LittleEndian.PutUint32(header[56:], streamCutoff)
	binary.LittleEndian.PutUint32(header[60:], endOfChain) // short FAT start
	binary.LittleEndian.PutUint32(header[68:], endOfChain) // DIFAT start
	binary.LittleEndian.PutUint32(header[76:], 0)          // FAT lives in sector 0
	for i := 1; i < 109; i++ {
		binary.LittleEndian.PutUint32(header[76+4*i:], freeSector)
	}

	fat := make([]byte, sectorSize)
	for i := range sectorSize / 4 {
		next := uint32(freeSector)
		switch {
		case i == 0:
			next = fatSector
		case i == 1:
			next = endOfChain
		case i >= 2 && i < 2+n-1:
			next = uint32(i + 1)
		case i == 2+n-1:
			next = endOfChain
		}
		binary.LittleEndian.PutUint32(fat[4*i:], next)
	}

	dir := make([]byte, sectorSize)
	dirEntry(dir[0:128], "Root Entry", 5, endOfChain, 0)
	dirEntry(dir[128:256], name, 2, 2, uint32(len(padded)))

	out := make([]byte, 0, 3*sectorSize+size)
	out = append(out, header...)
	out = append(out, fat...)
	out = append(out, dir...)
	return append(out, padded...)
}

func dirEntry(b []byte, name string, typ byte, start, size uint32) {
	u := utf16.Encode([]rune(name))
	for i, c := range u {
		binary.LittleEndian.PutUint16(b[2*i:], c)
	}
	binary.LittleEndian.PutUint16(b[64:], uint16(2*(len(u)+1)))
	b[66] = typ
	binary.LittleEndian.PutUint32(b[68:], freeSector) // left sibling
	binary.LittleEndian.PutUint32(b[72:], freeSector) // right sibling
	binary.LittleEndian.PutUint32(b[76:], freeSector) // child
	binary.LittleEndian.PutUint32(b[116:], start)
	binary.LittleEndian.PutUint32(b[120:], size)
}
