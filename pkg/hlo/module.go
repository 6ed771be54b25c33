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

// Module is a collection of computations, one of which is the entry point.
// The module owns its computations and, transitively, their instructions.
type Module struct {
	// Name of this module.
	name string
	// Computations in creation order.
	computations []*Computation
	// Entry computation of this module.
	entry *Computation
}

// NewModule constructs an empty module with the given name.
func NewModule(name string) *Module {
	return &Module{name: name}
}

// Name returns the name of this module.
func (p *Module) Name() string { return p.name }

// Computations returns the computations of this module in creation order.
func (p *Module) Computations() []*Computation { return p.computations }

// Entry returns the entry computation of this module, or nil if none has
// been designated yet.
func (p *Module) Entry() *Computation { return p.entry }

// NewComputation constructs an empty computation owned by this module.
func (p *Module) NewComputation(name string) *Computation {
	computation := &Computation{name: name, parent: p}
	p.computations = append(p.computations, computation)
	//
	return computation
}

// NewEntryComputation constructs an empty computation owned by this module
// and designates it as the entry point.
func (p *Module) NewEntryComputation(name string) *Computation {
	computation := p.NewComputation(name)
	p.entry = computation
	//
	return computation
}

// ComputationByName looks up a computation by name.
func (p *Module) ComputationByName(name string) (*Computation, bool) {
	for _, c := range p.computations {
		if c.name == name {
			return c, true
		}
	}
	//
	return nil, false
}
