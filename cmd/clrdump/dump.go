// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/saferwall/clrcore/image"
	"github.com/saferwall/clrcore/intrinsics"
	"github.com/saferwall/clrcore/loader"
	"github.com/saferwall/clrcore/metadata"
)

// typeDump is the JSON-friendly projection of one EEClass dumped by the
// "dump" subcommand.
type typeDump struct {
	Name    string       `json:"name"`
	Methods []methodDump `json:"methods,omitempty"`
	Fields  []fieldDump  `json:"fields,omitempty"`
}

type methodDump struct {
	Name     string `json:"name"`
	IsECall  bool   `json:"isECall"`
	BodySize uint32 `json:"bodySize,omitempty"`
	MaxStack uint16 `json:"maxStack,omitempty"`
}

type fieldDump struct {
	Name string `json:"name"`
}

// tickScheduler is the default intrinsics.Scheduler for the CLI: it has no
// running VM clock to report against, so it always reports zero rather than
// fabricating one.
type tickScheduler struct{}

func (tickScheduler) TickCount() int64 { return 0 }

// processExiter wires intrinsics.Exiter to the process's actual exit code,
// the same _s__Exit behavior natsu-clr's Environment ECall has.
type processExiter struct{}

func (processExiter) Exit(code int32) { os.Exit(int(code)) }

func buildRegistry() *intrinsics.Registry {
	env := &intrinsics.Environment{Scheduler: tickScheduler{}, Exiter: processExiter{}}
	debug := intrinsics.NewDebug(newLogger())
	return intrinsics.NewRegistry(env, debug)
}

// loadAssembly opens filename, parses its CLI metadata, and runs the
// TypeDef/MethodDef/Field loader against it, wiring a fresh intrinsics
// registry for InternalCall resolution.
func loadAssembly(filename string) (*loader.Assembly, error) {
	logger := newLogger()

	img, err := image.Open(filename, logger)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer img.Close()

	md, err := metadata.Load(img, logger)
	if err != nil {
		return nil, fmt.Errorf("load metadata: %w", err)
	}

	asm, err := loader.Load(md, img, buildRegistry(), logger)
	if err != nil {
		return nil, fmt.Errorf("load descriptors: %w", err)
	}
	return asm, nil
}

func dumpAssembly(filename string) error {
	asm, err := loadAssembly(filename)
	if err != nil {
		return err
	}

	var out []typeDump
	for _, class := range asm.Classes {
		td := typeDump{Name: class.TypeNamespace + "." + class.TypeName}
		if wantMethods || wantAll {
			for _, m := range class.Methods(asm) {
				md := methodDump{Name: m.Name, IsECall: m.IsECall, MaxStack: m.MaxStack}
				if !m.IsECall {
					md.BodySize = m.BodyEnd - m.BodyBegin
				}
				td.Methods = append(td.Methods, md)
			}
		}
		if wantFields || wantAll {
			for _, f := range class.Fields(asm) {
				td.Fields = append(td.Fields, fieldDump{Name: f.Name})
			}
		}
		out = append(out, td)
	}

	if wantTypes || wantAll {
		fmt.Println(prettyPrint(out))
	}
	return nil
}

// qualifiedMethodName builds the Namespace.Type::Method identifier used to
// look a method up, the same form InternalCall resolution keys on.
func qualifiedMethodName(m *loader.MethodDesc) string {
	if m.Class == nil {
		return "::" + m.Name
	}
	if m.Class.TypeNamespace == "" {
		return m.Class.TypeName + "::" + m.Name
	}
	return m.Class.TypeNamespace + "." + m.Class.TypeName + "::" + m.Name
}

// runMethod resolves args[1] against the assembly loaded from args[0] and
// reports its tiny/fat header decode without interpreting the body.
func runMethod(cmd *cobra.Command, args []string) {
	asm, err := loadAssembly(args[0])
	if err != nil {
		fmt.Println(err)
		return
	}

	qualified := args[1]
	for _, m := range asm.Methods {
		if qualifiedMethodName(m) != qualified {
			continue
		}
		if m.IsECall {
			fmt.Printf("%s is an internal call (%s)\n", qualified, m.ECall.Name)
			return
		}
		fmt.Printf("%s: MaxStack=%d BodySize=%d\n", qualified, m.MaxStack, m.BodyEnd-m.BodyBegin)
		return
	}
	fmt.Printf("method %s not found\n", qualified)
}
