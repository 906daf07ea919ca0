package transform

import (
	"testing"

	"github.com/recera/vexc/pkg/compiler/ast"
)

func TestHoistStatic(t *testing.T) {
	tests := []struct {
		name        string
		build       func() (*ast.RootNode, *ast.ElementNode)
		wantHoists  int
		wantRef     bool // target codegen replaced by a hoist reference
		wantArray   bool // target children replaced by a hoisted array
		hoistOption bool
	}{
		{
			name: "root element stays in render",
			build: func() (*ast.RootNode, *ast.ElementNode) {
				div := ast.NewElement("div", ast.ElementPlain, nil, []ast.TemplateChildNode{ast.NewText("hi")})
				return ast.NewRoot([]ast.TemplateChildNode{div}), div
			},
			hoistOption: true,
		},
		{
			name: "static child is hoisted",
			build: func() (*ast.RootNode, *ast.ElementNode) {
				span := ast.NewElement("span", ast.ElementPlain, []ast.ElementProp{
					ast.NewAttribute("class", ast.NewText("x")),
				}, []ast.TemplateChildNode{ast.NewText("hi")})
				div := ast.NewElement("div", ast.ElementPlain, nil, []ast.TemplateChildNode{
					span, ast.NewInterpolation("n"),
				})
				return ast.NewRoot([]ast.TemplateChildNode{div}), span
			},
			wantHoists:  1,
			wantRef:     true,
			hoistOption: true,
		},
		{
			name: "all static children hoist the array",
			build: func() (*ast.RootNode, *ast.ElementNode) {
				span := ast.NewElement("span", ast.ElementPlain, nil, nil)
				div := ast.NewElement("div", ast.ElementPlain, []ast.ElementProp{
					ast.NewDirective("bind", exp("v"), static("title"), nil),
				}, []ast.TemplateChildNode{span, ast.NewText("t")})
				return ast.NewRoot([]ast.TemplateChildNode{div}), div
			},
			wantHoists:  2,
			wantArray:   true,
			hoistOption: true,
		},
		{
			name: "directive keeps element dynamic",
			build: func() (*ast.RootNode, *ast.ElementNode) {
				span := ast.NewElement("span", ast.ElementPlain, []ast.ElementProp{
					ast.NewDirective("show", exp("ok"), nil, nil),
				}, nil)
				div := ast.NewElement("div", ast.ElementPlain, nil, []ast.TemplateChildNode{span})
				return ast.NewRoot([]ast.TemplateChildNode{div}), span
			},
			hoistOption: true,
		},
		{
			name: "component child is never hoisted",
			build: func() (*ast.RootNode, *ast.ElementNode) {
				comp := ast.NewElement("Foo", ast.ElementComponent, nil, nil)
				div := ast.NewElement("div", ast.ElementPlain, nil, []ast.TemplateChildNode{comp})
				return ast.NewRoot([]ast.TemplateChildNode{div}), div
			},
			hoistOption: true,
		},
		{
			name: "disabled",
			build: func() (*ast.RootNode, *ast.ElementNode) {
				span := ast.NewElement("span", ast.ElementPlain, nil, nil)
				div := ast.NewElement("div", ast.ElementPlain, nil, []ast.TemplateChildNode{span, ast.NewInterpolation("n")})
				return ast.NewRoot([]ast.TemplateChildNode{div}), span
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, target := tt.build()
			ctx := Transform(root, Options{HoistStatic: tt.hoistOption})

			if len(ctx.Hoists) != tt.wantHoists {
				t.Errorf("len(Hoists) = %d, want %d", len(ctx.Hoists), tt.wantHoists)
			}

			ref, isRef := target.CodegenNode().(*ast.SimpleExpressionNode)
			if isRef != tt.wantRef {
				t.Fatalf("codegen = %#v, want hoist reference: %t", target.CodegenNode(), tt.wantRef)
			}
			if isRef && ref.Content != "_hoisted_1" {
				t.Errorf("reference = %q", ref.Content)
			}

			if tt.wantArray {
				call := target.CodegenNode().(*ast.VNodeCall)
				children, ok := call.Children.(*ast.SimpleExpressionNode)
				if !ok || children.Content != "_hoisted_2" {
					t.Errorf("children = %#v, want _hoisted_2", call.Children)
				}
				if _, ok := ctx.Hoists[1].(*ast.ArrayExpression); !ok {
					t.Errorf("Hoists[1] = %T, want *ast.ArrayExpression", ctx.Hoists[1])
				}
			}

			if err := ast.Validate(root); err != nil {
				t.Errorf("Validate() = %v", err)
			}
		})
	}
}
