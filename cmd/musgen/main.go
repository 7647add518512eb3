package main

import (
	"os"
	"reflect"
	"strings"

	musgen "github.com/mus-format/musgen-go/mus"
	genops "github.com/mus-format/musgen-go/options/generate"
	structops "github.com/mus-format/musgen-go/options/struct"

	"github.com/poiesic/groundwork/core"
)

const outputFile = "./core/chunk_mus.gen.go"

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	// If we're in the core subpackage, cd up to project root
	if strings.HasSuffix(cwd, "core") {
		if err := os.Chdir(".."); err != nil {
			panic(err)
		}
	}

	bs, err := generate()
	if err != nil {
		panic(err)
	}

	err = os.WriteFile(outputFile, bs, 0644)
	if err != nil {
		panic(err)
	}
}

// generate produces the mus codecs for the records written to snapshots.
func generate() ([]byte, error) {
	g, err := musgen.NewCodeGenerator(
		genops.WithPkgPath("github.com/poiesic/groundwork/core"),
	)
	if err != nil {
		return nil, err
	}

	g.AddDefinedType(reflect.TypeFor[core.ID]())
	g.AddDefinedType(reflect.TypeFor[core.SourceType]())

	// One entry per Chunk field, in declaration order
	err = g.AddStruct(reflect.TypeFor[core.Chunk](),
		structops.WithField(), // Id
		structops.WithField(), // SourceId
		structops.WithField(), // SourceType
		structops.WithField(), // Domain
		structops.WithField(), // Text
		structops.WithField(), // Embedding
		structops.WithField(), // ChunkIndex
		structops.WithField(), // StartOffset
		structops.WithField()) // EndOffset
	if err != nil {
		return nil, err
	}

	return g.Generate()
}
