// Copyright 2025 walteh LLC
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

package status

import (
	"strings"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultEncoding is used when a phase does not name one.
const DefaultEncoding = "utf-8"

// 🔤 Codec converts file bytes to text and back for one encoding.
//
// UTF-8 is decoded strictly: invalid bytes are a DecodeError, never U+FFFD.
// Other encodings are resolved by their WHATWG label.
type Codec struct {
	name string
	enc  encoding.Encoding // nil for strict utf-8
}

// 🏭 LookupCodec returns the codec for an encoding label such as
// "utf-8", "windows-1252" or "iso-8859-1".
func LookupCodec(name string) (*Codec, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	if label == "" {
		label = DefaultEncoding
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, errors.Errorf("unknown encoding %q: %w", name, err)
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		return nil, errors.Errorf("unknown encoding %q: %w", name, err)
	}

	if canonical == DefaultEncoding {
		return &Codec{name: DefaultEncoding}, nil
	}
	return &Codec{name: canonical, enc: enc}, nil
}

// Name returns the canonical encoding name.
func (c *Codec) Name() string {
	return c.name
}

// Decode turns raw file bytes into text.
func (c *Codec) Decode(path string, data []byte) (string, error) {
	if c.enc == nil {
		if off := invalidUTF8Offset(data); off >= 0 {
			return "", &DecodeError{Path: path, Encoding: c.name, Offset: off}
		}
		return string(data), nil
	}

	out, err := c.enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", &DecodeError{Path: path, Encoding: c.name, Offset: -1, Err: err}
	}
	return string(out), nil
}

// Encode turns text back into file bytes. Runes the encoding cannot
// represent are a WriteError.
func (c *Codec) Encode(path string, content string) ([]byte, error) {
	if c.enc == nil {
		if !utf8.ValidString(content) {
			return nil, &WriteError{Path: path, Err: errors.New("content is not valid utf-8")}
		}
		return []byte(content), nil
	}

	out, err := c.enc.NewEncoder().Bytes([]byte(content))
	if err != nil {
		return nil, &WriteError{Path: path, Err: errors.Errorf("encoding as %s: %w", c.name, err)}
	}
	return out, nil
}

func invalidUTF8Offset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
