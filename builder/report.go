// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package builder

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/emer/learnrules/learn"
)

// ObjInfo summarizes a built object
type ObjInfo struct {
	Name    string
	Kind    ObjKinds
	Signals []string
}

// ConnInfo summarizes a built connection
type ConnInfo struct {
	Name     string
	Pre      string
	Post     string
	Factored bool
	Signals  []string
}

// RuleInfo summarizes a built learning rule
type RuleInfo struct {
	Conn     string
	Type     string
	Kind     learn.RuleKinds
	Modifies learn.Targets
	Signals  []string
}

// ModelInfo is the JSON summary of a Model
type ModelInfo struct {
	Objects []ObjInfo
	Conns   []ConnInfo
	Rules   []RuleInfo
}

func sigNames(sm SigMap) []string {
	nms := make([]string, 0, len(sm))
	for nm := range sm {
		nms = append(nms, nm)
	}
	sort.Strings(nms)
	return nms
}

// Info returns a summary of the built objects, connections and rules,
// sorted by kind and name.
func (m *Model) Info() *ModelInfo {
	mi := &ModelInfo{}
	for key, sm := range m.Sig {
		switch obj := key.(type) {
		case Object:
			mi.Objects = append(mi.Objects, ObjInfo{Name: obj.Name(), Kind: obj.ObjKind(), Signals: sigNames(sm)})
		case *Connection:
			mi.Conns = append(mi.Conns, ConnInfo{Name: obj.Nm, Pre: obj.Pre.Name(), Post: obj.Post.Name(), Factored: obj.IsFactored, Signals: sigNames(sm)})
		}
	}
	sort.Slice(mi.Objects, func(i, j int) bool {
		a, b := mi.Objects[i], mi.Objects[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Name < b.Name
	})
	sort.Slice(mi.Conns, func(i, j int) bool { return mi.Conns[i].Name < mi.Conns[j].Name })
	for _, rule := range m.Rules {
		mi.Rules = append(mi.Rules, RuleInfo{Conn: rule.Conn.Nm, Type: rule.Type.TypeName(), Kind: rule.Type.Kind(), Modifies: rule.Modifies, Signals: sigNames(m.Sig[rule])})
	}
	return mi
}

// WriteJSON writes the Info summary in an indented JSON format
func (m *Model) WriteJSON(w io.Writer) error {
	b, err := json.MarshalIndent(m.Info(), "", " ")
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
