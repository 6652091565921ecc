package pdf

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// maxInflated bounds decompression so a hostile stream cannot exhaust memory.
const maxInflated = 64 << 20

// decode undoes the stream's filters. Only FlateDecode (with the PNG
// predictors xref streams use) is needed to reach the page tree.
func decode(s *Object) ([]byte, error) {
	f, ok := s.Dict["Filter"]
	if !ok {
		return s.Data, nil
	}
	name := f.Name
	if f.Kind == Array {
		if len(f.Items) != 1 {
			return nil, fmt.Errorf("filter chains are not supported")
		}
		name = f.Items[0].Name
	}
	if name != "FlateDecode" && name != "Fl" {
		return nil, fmt.Errorf("unsupported filter: %s", name)
	}

	r, err := zlib.NewReader(bytes.NewReader(s.Data))
	if err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(io.LimitReader(r, maxInflated+1))
	if err != nil {
		return nil, fmt.Errorf("zlib read: %w", err)
	}
	if len(out) > maxInflated {
		return nil, fmt.Errorf("inflated stream exceeds %d bytes", maxInflated)
	}

	parms := s.Dict["DecodeParms"]
	if parms == nil || parms.Kind != Dictionary {
		return out, nil
	}
	if p, _ := parms.Dict.Int("Predictor"); p >= 10 {
		cols, ok := parms.Dict.Int("Columns")
		if !ok || cols <= 0 {
			cols = 1
		}
		return unpredict(out, int(cols)), nil
	}
	return out, nil
}

// unpredict reverses PNG row filters for single-byte samples.
func unpredict(data []byte, cols int) []byte {
	stride := cols + 1
	rows := len(data) / stride
	out := make([]byte, rows*cols)
	prev := make([]byte, cols)
	for r := 0; r < rows; r++ {
		src := data[r*stride+1 : (r+1)*stride]
		dst := out[r*cols : (r+1)*cols]
		for i := range dst {
			var left, upLeft byte
			if i > 0 {
				left, upLeft = dst[i-1], prev[i-1]
			}
			up := prev[i]
			switch data[r*stride] {
			case 1:
				dst[i] = src[i] + left
			case 2:
				dst[i] = src[i] + up
			case 3:
				dst[i] = src[i] + byte((int(left)+int(up))/2)
			case 4:
				dst[i] = src[i] + paeth(left, up, upLeft)
			default:
				dst[i] = src[i]
			}
		}
		copy(prev, dst)
	}
	return out
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := absInt(p-int(a)), absInt(p-int(b)), absInt(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	}
	return c
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
