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

// Package callgraph builds a directed graph over the computations of a
// module, connected by the call sites found in their instructions, and
// classifies how each computation is invoked: sequentially (once per call),
// in parallel (once per element of a data-parallel operation), or both.
// Downstream buffer analyses rely on this classification when deciding
// whether liveness reasoning remains sound across nested calls.
package callgraph

import (
	"fmt"
	"strings"

	"github.com/consensys/go-hlo/pkg/hlo"
	"github.com/consensys/go-hlo/pkg/util/collection/stack"
	log "github.com/sirupsen/logrus"
)

// Context classifies how a computation is invoked.
type Context uint

const (
	// ContextNone indicates the calling context has not been resolved yet.
	// No node retains this context once analysis completes.
	ContextNone Context = iota
	// ContextSequential indicates the computation is invoked exactly once
	// per execution of each call site (call, while condition, while body).
	ContextSequential
	// ContextParallel indicates the computation is invoked once per element
	// of a data-parallel operation (map, reduce, reduce-window,
	// select-and-scatter).
	ContextParallel
	// ContextBoth indicates the computation is reachable through both
	// sequential and parallel call sites.
	ContextBoth
)

func (c Context) String() string {
	switch c {
	case ContextNone:
		return "none"
	case ContextSequential:
		return "sequential"
	case ContextParallel:
		return "parallel"
	case ContextBoth:
		return "both"
	}
	//
	panic(fmt.Sprintf("unknown context %d", c))
}

// UnionContexts returns the calling context of a computation invoked from
// both given contexts.  The operation is idempotent and commutative, with
// ContextNone as identity and ContextBoth absorbing.
func UnionContexts(a Context, b Context) Context {
	switch {
	case a == ContextNone:
		return b
	case b == ContextNone:
		return a
	case a == b:
		return a
	default:
		// One is sequential and the other parallel (or either is both).
		return ContextBoth
	}
}

// CallSite associates a calling instruction with one computation it invokes
// and the context of that invocation.
type CallSite struct {
	// Instruction performing the invocation.
	instruction *hlo.Instruction
	// Computation being invoked.
	called *hlo.Computation
	// Context of this particular invocation, fixed by the opcode of the
	// instruction.  Never ContextNone or ContextBoth.
	context Context
}

// Instruction returns the instruction performing this invocation.
func (p CallSite) Instruction() *hlo.Instruction { return p.instruction }

// Called returns the computation being invoked.
func (p CallSite) Called() *hlo.Computation { return p.called }

// Context returns the context of this invocation.
func (p CallSite) Context() Context { return p.context }

func (p CallSite) String() string {
	return fmt.Sprintf("%s calls %s (%s)", p.instruction.Name(), p.called.Name(), p.context)
}

// Node holds the call sites and resolved calling context of one computation.
type Node struct {
	// Computation this node represents.
	computation *hlo.Computation
	// Outgoing call sites, in the order they were discovered.
	callsites []CallSite
	// Distinct callee computations, insertion ordered.
	callees   []*hlo.Computation
	calleeSet map[*hlo.Computation]bool
	// Incoming call sites, in the order they were discovered.
	callerCallsites []CallSite
	// Distinct caller computations, insertion ordered.
	callers   []*hlo.Computation
	callerSet map[*hlo.Computation]bool
	// Resolved calling context of this computation.
	context Context
}

func newNode(computation *hlo.Computation) *Node {
	return &Node{
		computation: computation,
		calleeSet:   make(map[*hlo.Computation]bool),
		callerSet:   make(map[*hlo.Computation]bool),
	}
}

// Computation returns the computation this node represents.
func (p *Node) Computation() *hlo.Computation { return p.computation }

// CallSites returns the outgoing call sites of this node.
func (p *Node) CallSites() []CallSite { return p.callsites }

// Callees returns the distinct computations this node invokes, in the order
// first seen.
func (p *Node) Callees() []*hlo.Computation { return p.callees }

// CallerCallSites returns the incoming call sites of this node.
func (p *Node) CallerCallSites() []CallSite { return p.callerCallsites }

// Callers returns the distinct computations invoking this node, in the order
// first seen.
func (p *Node) Callers() []*hlo.Computation { return p.callers }

// Context returns the resolved calling context of this computation.
func (p *Node) Context() Context { return p.context }

// Record an outgoing call site, deduplicating the callee adjacency list.
func (p *Node) addCallSite(callsite CallSite) {
	p.callsites = append(p.callsites, callsite)
	//
	if callee := callsite.called; !p.calleeSet[callee] {
		p.calleeSet[callee] = true
		p.callees = append(p.callees, callee)
	}
}

// Record an incoming call site, deduplicating the caller adjacency list.
func (p *Node) addCallerCallSite(callsite CallSite) {
	p.callerCallsites = append(p.callerCallsites, callsite)
	//
	if caller := callsite.instruction.Parent(); !p.callerSet[caller] {
		p.callerSet[caller] = true
		p.callers = append(p.callers, caller)
	}
}

// Collect the call sites arising from one instruction.  Fusion instructions
// are not call boundaries themselves: their nested instructions are unwound
// (via an explicit stack, to tolerate deep nesting) and surface their call
// sites at the level of the fusion instruction.
func (p *Node) addCallSitesInInstruction(inst *hlo.Instruction) {
	worklist := stack.NewStack[*hlo.Instruction]()
	worklist.Push(inst)
	//
	for !worklist.IsEmpty() {
		next := worklist.Pop()
		//
		switch next.Opcode() {
		case hlo.OpcodeCall:
			p.addCallSite(CallSite{inst, next.ToApply(), ContextSequential})
		case hlo.OpcodeMap, hlo.OpcodeReduce, hlo.OpcodeReduceWindow:
			p.addCallSite(CallSite{inst, next.ToApply(), ContextParallel})
		case hlo.OpcodeSelectAndScatter:
			p.addCallSite(CallSite{inst, next.SelectComputation(), ContextParallel})
			p.addCallSite(CallSite{inst, next.ScatterComputation(), ContextParallel})
		case hlo.OpcodeWhile:
			p.addCallSite(CallSite{inst, next.WhileCondition(), ContextSequential})
			p.addCallSite(CallSite{inst, next.WhileBody(), ContextSequential})
		case hlo.OpcodeFusion:
			worklist.PushReversed(next.FusedInstructions())
		}
	}
}

// CallGraph is a directed graph over the computations of one module, with a
// node per computation and edges given by call sites.
type CallGraph struct {
	// Module this graph was built over.
	module *hlo.Module
	// One node per computation, in module order.
	nodes []*Node
	// Index of each computation's node within nodes.
	indices map[*hlo.Computation]int
}

// Build constructs the call graph of a module and resolves the calling
// context of every computation.
func Build(module *hlo.Module) (*CallGraph, error) {
	graph := &CallGraph{
		module:  module,
		indices: make(map[*hlo.Computation]int),
	}
	// Construct nodes and populate outgoing call sites.
	for _, computation := range module.Computations() {
		if _, ok := graph.indices[computation]; ok {
			return nil, fmt.Errorf("computation %s registered twice in call graph", computation.Name())
		}
		//
		node := newNode(computation)
		graph.indices[computation] = len(graph.nodes)
		graph.nodes = append(graph.nodes, node)
		//
		for _, inst := range computation.Instructions() {
			node.addCallSitesInInstruction(inst)
		}
	}
	// Mirror call sites onto callee nodes.
	for _, node := range graph.nodes {
		for _, callsite := range node.callsites {
			callee, err := graph.GetNode(callsite.called)
			if err != nil {
				return nil, err
			}
			//
			callee.addCallerCallSite(callsite)
		}
	}
	// Resolve calling contexts.
	if err := graph.setContexts(); err != nil {
		return nil, err
	}
	//
	log.Debugf("built call graph for module %s:\n%s", module.Name(), graph)
	//
	return graph, nil
}

// Module returns the module this graph was built over.
func (p *CallGraph) Module() *hlo.Module { return p.module }

// Nodes returns all nodes of this graph, in module order.
func (p *CallGraph) Nodes() []*Node { return p.nodes }

// GetNode returns the node of a given computation, failing if the
// computation was never registered.  Such a failure signals a mismatch
// between the module analysed and the computation queried, i.e. a bug in the
// caller rather than malformed user input.
func (p *CallGraph) GetNode(computation *hlo.Computation) (*Node, error) {
	if computation == nil {
		return nil, fmt.Errorf("module %s has no such computation", p.module.Name())
	}
	//
	index, ok := p.indices[computation]
	if !ok {
		return nil, fmt.Errorf("computation %s not found in call graph", computation.Name())
	}
	//
	return p.nodes[index], nil
}

// Propagate calling contexts to a fixed point.  Roots (caller-less
// computations) are sequential; a parallel call site forces the callee
// parallel, whilst a sequential call site passes the caller's own context
// through.  Contexts only ever rise in the lattice none < {sequential,
// parallel} < both, hence each node is requeued at most twice and the
// iteration terminates.
func (p *CallGraph) setContexts() error {
	var worklist []*Node
	//
	for _, node := range p.nodes {
		if len(node.callers) == 0 {
			node.context = ContextSequential
			worklist = append(worklist, node)
		}
	}
	//
	for len(worklist) > 0 {
		node := worklist[0]
		worklist = worklist[1:]
		//
		for _, callsite := range node.callsites {
			callee, err := p.GetNode(callsite.called)
			if err != nil {
				return err
			}
			//
			contextToAdd := node.context
			if callsite.context == ContextParallel {
				contextToAdd = ContextParallel
			}
			//
			if next := UnionContexts(contextToAdd, callee.context); next != callee.context {
				callee.context = next
				worklist = append(worklist, callee)
			}
		}
	}
	// Every computation must have been reached.
	for _, node := range p.nodes {
		if node.context == ContextNone {
			return fmt.Errorf("computation %s has unresolved calling context", node.computation.Name())
		}
	}
	//
	return nil
}

// VisitNodes performs a callee-first (post-order) traversal of this graph,
// calling visitor exactly once per node reached.  When visitUnreachable is
// false, traversal starts only from the entry computation; otherwise it
// restarts from every caller-less node, covering dead computations too.
func (p *CallGraph) VisitNodes(visitor func(*Node) error, visitUnreachable bool) error {
	visited := make(map[*Node]bool)
	//
	if !visitUnreachable {
		if p.module.Entry() == nil {
			return fmt.Errorf("module %s has no entry computation", p.module.Name())
		}
		//
		entry, err := p.GetNode(p.module.Entry())
		if err != nil {
			return err
		}
		//
		return p.visit(visitor, entry, visited)
	}
	//
	for _, node := range p.nodes {
		if len(node.callers) == 0 {
			if err := p.visit(visitor, node, visited); err != nil {
				return err
			}
		}
	}
	//
	return nil
}

func (p *CallGraph) visit(visitor func(*Node) error, node *Node, visited map[*Node]bool) error {
	if visited[node] {
		return nil
	}
	//
	visited[node] = true
	//
	for _, callee := range node.callees {
		calleeNode, err := p.GetNode(callee)
		if err != nil {
			return err
		}

		if err := p.visit(visitor, calleeNode, visited); err != nil {
			return err
		}
	}
	//
	return visitor(node)
}

func (p *CallGraph) String() string {
	var builder strings.Builder
	//
	fmt.Fprintf(&builder, "call graph for module %s:\n", p.module.Name())
	//
	for _, node := range p.nodes {
		fmt.Fprintf(&builder, "computation %s (%s):\n", node.computation.Name(), node.context)
		builder.WriteString("  calls:\n")

		for _, callee := range node.callees {
			fmt.Fprintf(&builder, "    %s\n", callee.Name())
		}

		builder.WriteString("  called by:\n")

		for _, caller := range node.callers {
			fmt.Fprintf(&builder, "    %s\n", caller.Name())
		}

		builder.WriteString("  callsites:\n")

		for _, callsite := range node.callsites {
			fmt.Fprintf(&builder, "    %s\n", callsite)
		}
	}
	//
	return builder.String()
}
