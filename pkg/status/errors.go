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
	"fmt"

	"github.com/walteh/codemod/pkg/discovery"
	"github.com/walteh/codemod/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🏷️ FailureKind classifies why a path failed during a run
type FailureKind string

const (
	KindNone           FailureKind = ""
	KindDiscovery      FailureKind = "discovery"
	KindWalk           FailureKind = "walk"
	KindRead           FailureKind = "read"
	KindDecode         FailureKind = "decode"
	KindWrite          FailureKind = "write"
	KindIdempotence    FailureKind = "idempotence"
	KindRenameConflict FailureKind = "rename-conflict"
	KindRename         FailureKind = "rename"
	KindValidation     FailureKind = "validation"
	KindUnknown        FailureKind = "unknown"
)

// kinded is implemented by errors that know their own failure kind.
type kinded interface {
	FailureKind() FailureKind
}

// 🔍 KindOf maps an error to the kind reported in the run summary.
func KindOf(err error) FailureKind {
	if err == nil {
		return KindNone
	}

	var k kinded
	if errors.As(err, &k) {
		return k.FailureKind()
	}

	var rootErr *discovery.RootError
	if errors.As(err, &rootErr) {
		return KindDiscovery
	}
	var walkErr *discovery.WalkError
	if errors.As(err, &walkErr) {
		return KindWalk
	}
	var validationErr *text.ValidationError
	if errors.As(err, &validationErr) {
		return KindValidation
	}

	return KindUnknown
}

// ReadError is returned when a candidate file cannot be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

func (e *ReadError) FailureKind() FailureKind { return KindRead }

// 🚫 DecodeError is returned when file bytes are not valid in the configured encoding.
// The file is left untouched.
type DecodeError struct {
	Path     string
	Encoding string
	Offset   int // byte offset of the first invalid sequence, -1 if unknown
	Err      error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("decoding %s as %s", e.Path, e.Encoding)
	if e.Offset >= 0 {
		msg += fmt.Sprintf(": invalid byte sequence at offset %d", e.Offset)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) FailureKind() FailureKind { return KindDecode }

// WriteError is returned when new content cannot be encoded or persisted.
// The original file is left intact.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) FailureKind() FailureKind { return KindWrite }

// ♻️ IdempotenceError is returned when applying a rule set to its own output
// changes the text again.
type IdempotenceError struct {
	Path  string
	Count int // substitutions made by the second pass
}

func (e *IdempotenceError) Error() string {
	return fmt.Sprintf("rules are not idempotent on %s: a second pass made %d more substitutions", e.Path, e.Count)
}

func (e *IdempotenceError) FailureKind() FailureKind { return KindIdempotence }
