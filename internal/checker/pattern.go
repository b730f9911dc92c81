package checker

import (
	"strings"

	"github.com/cyrusattoun/covenant/internal/ast"
	"github.com/cyrusattoun/covenant/internal/typesystem"
)

// declarePattern binds every name a pattern introduces to env, inferring
// sub-binding types from the matched enum variant's declared field types
// when the variant can be resolved, and Unknown otherwise.
func (c *Checker) declarePattern(p ast.Pattern, scrutType typesystem.ResolvedType) {
	switch pp := p.(type) {
	case *ast.BindingPattern:
		c.env.Declare(pp.Name, scrutType)

	case *ast.VariantPattern:
		enumName, variantName := splitVariant(typePathName(pp.Path))
		fields, ok := c.variantFields(enumName, variantName)
		if !ok {
			for _, sub := range pp.Fields.Positional {
				c.declarePattern(sub, typesystem.Unknown)
			}
			for _, nf := range pp.Fields.Named {
				c.declarePattern(nf.Pattern, typesystem.Unknown)
			}
			return
		}
		switch fields.Kind {
		case ast.VariantTuple:
			for i, sub := range pp.Fields.Positional {
				t := typesystem.Unknown
				if i < len(fields.TupleTypes) {
					t = c.idx.ResolveType(fields.TupleTypes[i])
				}
				c.declarePattern(sub, t)
			}
		case ast.VariantStruct:
			for _, nf := range pp.Fields.Named {
				t := typesystem.Unknown
				for _, fd := range fields.StructField {
					if fd.Name == nf.Name {
						t = c.idx.ResolveType(fd.Type)
					}
				}
				c.declarePattern(nf.Pattern, t)
			}
		}
	}
}

func (c *Checker) variantFields(enumName, variantName string) (ast.VariantFields, bool) {
	for _, v := range c.idx.Enums[enumName] {
		if v.Name == variantName {
			return v.Fields, true
		}
	}
	return ast.VariantFields{}, false
}

// splitVariant splits a dotted variant path ("Status.Active") into its
// enum and variant name. An undotted path has no known enum.
func splitVariant(dotted string) (enum, variant string) {
	i := strings.LastIndex(dotted, ".")
	if i < 0 {
		return "", dotted
	}
	return dotted[:i], dotted[i+1:]
}
