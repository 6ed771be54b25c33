// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package hlo

import (
	"fmt"
	"strings"
)

// ElementType identifies the primitive type of the elements held in an array
// shape, and determines how many bytes a single element occupies.
type ElementType uint

const (
	// PRED represents a boolean predicate (one byte).
	PRED ElementType = iota
	// S32 represents a signed 32bit integer.
	S32
	// S64 represents a signed 64bit integer.
	S64
	// F32 represents a 32bit floating point number.
	F32
	// F64 represents a 64bit floating point number.
	F64
)

// ByteSize returns the number of bytes a single element of this type occupies.
func (t ElementType) ByteSize() int64 {
	switch t {
	case PRED:
		return 1
	case S32, F32:
		return 4
	case S64, F64:
		return 8
	}
	//
	panic(fmt.Sprintf("unknown element type %d", t))
}

func (t ElementType) String() string {
	switch t {
	case PRED:
		return "pred"
	case S32:
		return "s32"
	case S64:
		return "s64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	}
	//
	panic(fmt.Sprintf("unknown element type %d", t))
}

// ParseElementType parses the string form of an element type (e.g. "f32").
func ParseElementType(s string) (ElementType, bool) {
	for _, t := range []ElementType{PRED, S32, S64, F32, F64} {
		if t.String() == s {
			return t, true
		}
	}
	//
	return PRED, false
}

// Shape describes the value produced by an instruction: either an array of
// primitive elements with given dimensions (a scalar being the
// zero-dimensional case), or a tuple of element shapes.
type Shape struct {
	elementType ElementType
	dimensions  []uint
	// Element shapes, for tuple shapes only.
	elements []Shape
	tuple    bool
}

// NewShape constructs an array shape with the given element type and
// dimensions.  A shape with no dimensions is a scalar.
func NewShape(elementType ElementType, dimensions ...uint) Shape {
	return Shape{elementType: elementType, dimensions: dimensions}
}

// NewTupleShape constructs a tuple shape over the given element shapes.
func NewTupleShape(elements ...Shape) Shape {
	return Shape{elements: elements, tuple: true}
}

// IsTuple checks whether this shape is a tuple shape.
func (p Shape) IsTuple() bool {
	return p.tuple
}

// ElementType returns the primitive element type of an array shape.
func (p Shape) ElementType() ElementType {
	if p.tuple {
		panic("tuple shape has no element type")
	}
	//
	return p.elementType
}

// Dimensions returns the dimensions of an array shape.
func (p Shape) Dimensions() []uint {
	if p.tuple {
		panic("tuple shape has no dimensions")
	}
	//
	return p.dimensions
}

// TupleElements returns the element shapes of a tuple shape.
func (p Shape) TupleElements() []Shape {
	if !p.tuple {
		panic("array shape has no tuple elements")
	}
	//
	return p.elements
}

// ByteSize returns the number of bytes required to hold a value of this shape.
// For tuple shapes this is the sum over the element shapes.
func (p Shape) ByteSize() int64 {
	if p.tuple {
		size := int64(0)
		for _, e := range p.elements {
			size += e.ByteSize()
		}
		//
		return size
	}
	// Array case
	size := p.elementType.ByteSize()
	for _, d := range p.dimensions {
		size *= int64(d)
	}
	//
	return size
}

func (p Shape) String() string {
	var builder strings.Builder
	//
	if p.tuple {
		builder.WriteString("(tuple")
		for _, e := range p.elements {
			builder.WriteString(" ")
			builder.WriteString(e.String())
		}

		builder.WriteString(")")
	} else if len(p.dimensions) == 0 {
		builder.WriteString(p.elementType.String())
	} else {
		builder.WriteString("(")
		builder.WriteString(p.elementType.String())

		for _, d := range p.dimensions {
			fmt.Fprintf(&builder, " %d", d)
		}

		builder.WriteString(")")
	}
	//
	return builder.String()
}
