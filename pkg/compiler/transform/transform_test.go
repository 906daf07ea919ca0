package transform

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/recera/vexc/pkg/compiler/ast"
)

func helperNames(ctx *Context) []string {
	var names []string
	for _, h := range ctx.Helpers() {
		names = append(names, h.Name())
	}
	return names
}

func exp(s string) *ast.SimpleExpressionNode {
	return ast.NewSimpleExpression(s, false)
}

func static(s string) *ast.SimpleExpressionNode {
	return ast.NewSimpleExpression(s, true)
}

func TestTransform_StaticElement(t *testing.T) {
	div := ast.NewElement("div", ast.ElementPlain, []ast.ElementProp{
		ast.NewAttribute("id", ast.NewText("app")),
	}, nil)
	root := ast.NewRoot([]ast.TemplateChildNode{div})

	ctx := Transform(root, Options{})

	call, ok := div.CodegenNode().(*ast.VNodeCall)
	if !ok {
		t.Fatalf("codegen = %T, want *ast.VNodeCall", div.CodegenNode())
	}
	if call.Tag != ast.TagName("div") || call.IsComponent || call.Directives != nil {
		t.Errorf("call = %+v", call)
	}
	props, ok := call.Props.(*ast.ObjectExpression)
	if !ok || len(props.Properties) != 1 {
		t.Fatalf("props = %#v", call.Props)
	}
	if key := props.Properties[0].Key.(*ast.SimpleExpressionNode); key.Content != "id" {
		t.Errorf("prop key = %q", key.Content)
	}
	if diff := cmp.Diff([]string{"createElementVNode"}, helperNames(ctx)); diff != "" {
		t.Errorf("helpers mismatch (-want +got):\n%s", diff)
	}
	if len(root.CodegenNode) != 1 || root.CodegenNode[0] != call {
		t.Errorf("root codegen = %v", root.CodegenNode)
	}
}

func TestTransform_DirectiveRegistersWithDirectives(t *testing.T) {
	div := ast.NewElement("div", ast.ElementPlain, []ast.ElementProp{
		ast.NewAttribute("id", ast.NewText("app")),
		ast.NewDirective("show", exp("visible"), nil, nil),
	}, nil)
	root := ast.NewRoot([]ast.TemplateChildNode{div})

	ctx := Transform(root, Options{})

	call := div.CodegenNode().(*ast.VNodeCall)
	if call.Directives == nil || len(call.Directives.Elements) != 1 {
		t.Fatalf("directives = %#v", call.Directives)
	}
	tuple := call.Directives.Elements[0].(*ast.ArrayExpression)
	if len(tuple.Elements) != 2 || tuple.Elements[0] != ast.Raw("_vShow") {
		t.Errorf("tuple = %#v", tuple.Elements)
	}
	if !ctx.HasHelper(ast.CreateElementVNode) || !ctx.HasHelper(ast.WithDirectives) {
		t.Errorf("helpers = %v", helperNames(ctx))
	}
	if diff := cmp.Diff([]string{"vShow", "createElementVNode", "withDirectives"}, helperNames(ctx)); diff != "" {
		t.Errorf("helpers mismatch (-want +got):\n%s", diff)
	}
}

func TestTransform_CustomDirectiveTuples(t *testing.T) {
	tests := []struct {
		name string
		dir  *ast.DirectiveNode
		want []string
	}{
		{"bare", ast.NewDirective("focus", nil, nil, nil), []string{"_directive_focus"}},
		{"exp", ast.NewDirective("focus", exp("on"), nil, nil), []string{"_directive_focus", "on"}},
		{"arg without exp", ast.NewDirective("focus", nil, static("x"), nil), []string{"_directive_focus", "void 0", "x"}},
		{"modifiers only", ast.NewDirective("focus", nil, nil, []string{"lazy"}), []string{"_directive_focus", "void 0", "void 0", "{lazy}"}},
		{"all", ast.NewDirective("focus", exp("on"), static("x"), []string{"a", "b"}), []string{"_directive_focus", "on", "x", "{a,b}"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := ast.NewElement("input", ast.ElementPlain, []ast.ElementProp{tt.dir}, nil)
			ctx := Transform(ast.NewRoot([]ast.TemplateChildNode{el}), Options{})

			call := el.CodegenNode().(*ast.VNodeCall)
			tuple := call.Directives.Elements[0].(*ast.ArrayExpression)
			if err := ast.CheckDirectiveArgument(tuple); err != nil {
				t.Errorf("CheckDirectiveArgument() = %v", err)
			}
			if diff := cmp.Diff(tt.want, describe(tuple.Elements)); diff != "" {
				t.Errorf("tuple mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff([]string{"focus"}, ctx.Directives.Items()); diff != "" {
				t.Errorf("directive assets mismatch (-want +got):\n%s", diff)
			}
			if !ctx.HasHelper(ast.ResolveDirective) {
				t.Error("resolveDirective not registered")
			}
		})
	}
}

func describe(elements []ast.ArrayElement) []string {
	var out []string
	for _, e := range elements {
		switch e := e.(type) {
		case ast.Raw:
			out = append(out, string(e))
		case *ast.SimpleExpressionNode:
			out = append(out, e.Content)
		case *ast.ObjectExpression:
			var keys []string
			for _, p := range e.Properties {
				keys = append(keys, p.Key.(*ast.SimpleExpressionNode).Content)
			}
			out = append(out, "{"+strings.Join(keys, ",")+"}")
		default:
			out = append(out, "?")
		}
	}
	return out
}

func TestTransform_Component(t *testing.T) {
	comp := ast.NewElement("my-button", ast.ElementComponent, []ast.ElementProp{
		ast.NewDirective("on", exp("save"), static("click"), nil),
	}, []ast.TemplateChildNode{ast.NewText("Save")})
	root := ast.NewRoot([]ast.TemplateChildNode{comp})

	ctx := Transform(root, Options{})

	call := comp.CodegenNode().(*ast.VNodeCall)
	if !call.IsComponent {
		t.Error("IsComponent = false")
	}
	if call.Tag != ast.TagName("_component_my_button") {
		t.Errorf("Tag = %v", call.Tag)
	}
	props := call.Props.(*ast.ObjectExpression)
	if key := props.Properties[0].Key.(*ast.SimpleExpressionNode); key.Content != "onClick" || !key.IsStatic {
		t.Errorf("handler key = %+v", key)
	}
	if diff := cmp.Diff([]string{"resolveComponent", "createVNode"}, helperNames(ctx)); diff != "" {
		t.Errorf("helpers mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"my-button"}, ctx.Components.Items()); diff != "" {
		t.Errorf("components mismatch (-want +got):\n%s", diff)
	}
}

func TestTransform_DynamicComponent(t *testing.T) {
	comp := ast.NewElement("component", ast.ElementComponent, []ast.ElementProp{
		ast.NewDirective("bind", exp("view"), static("is"), nil),
		ast.NewAttribute("title", ast.NewText("x")),
	}, nil)
	ctx := Transform(ast.NewRoot([]ast.TemplateChildNode{comp}), Options{})

	call := comp.CodegenNode().(*ast.VNodeCall)
	tag, ok := call.Tag.(*ast.CallExpression)
	if !ok || tag.Callee != ast.ResolveDynamicComponent {
		t.Fatalf("Tag = %#v", call.Tag)
	}
	if !call.IsComponent {
		t.Error("IsComponent = false")
	}
	props := call.Props.(*ast.ObjectExpression)
	if len(props.Properties) != 1 {
		t.Errorf("is binding leaked into props: %d properties", len(props.Properties))
	}
	if ctx.Components.Len() != 0 {
		t.Errorf("dynamic component registered as asset: %v", ctx.Components.Items())
	}
	if err := ast.Validate(ctx.Root); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestTransform_MergeProps(t *testing.T) {
	div := ast.NewElement("div", ast.ElementPlain, []ast.ElementProp{
		ast.NewAttribute("id", ast.NewText("a")),
		ast.NewDirective("bind", exp("attrs"), nil, nil),
		ast.NewDirective("bind", exp("cls"), static("class"), nil),
	}, nil)
	ctx := Transform(ast.NewRoot([]ast.TemplateChildNode{div}), Options{})

	call := div.CodegenNode().(*ast.VNodeCall)
	props, ok := call.Props.(*ast.CallExpression)
	if !ok || props.Callee != ast.MergeProps {
		t.Fatalf("props = %#v", call.Props)
	}
	if len(props.Arguments) != 3 {
		t.Fatalf("mergeProps args = %d, want 3", len(props.Arguments))
	}
	if _, ok := props.Arguments[0].(*ast.ObjectExpression); !ok {
		t.Errorf("arg 0 = %T", props.Arguments[0])
	}
	if a, ok := props.Arguments[1].(*ast.SimpleExpressionNode); !ok || a.Content != "attrs" {
		t.Errorf("arg 1 = %#v", props.Arguments[1])
	}
	if !ctx.HasHelper(ast.MergeProps) {
		t.Error("mergeProps not registered")
	}
}

func TestTransform_TextAndHTMLDirectives(t *testing.T) {
	p := ast.NewElement("p", ast.ElementPlain, []ast.ElementProp{
		ast.NewDirective("text", exp("msg"), nil, nil),
	}, nil)
	d := ast.NewElement("div", ast.ElementPlain, []ast.ElementProp{
		ast.NewDirective("html", exp("raw"), nil, nil),
	}, nil)
	ctx := Transform(ast.NewRoot([]ast.TemplateChildNode{p, d}), Options{})

	pProps := p.CodegenNode().(*ast.VNodeCall).Props.(*ast.ObjectExpression)
	if key := pProps.Properties[0].Key.(*ast.SimpleExpressionNode).Content; key != "textContent" {
		t.Errorf("v-text key = %q", key)
	}
	dProps := d.CodegenNode().(*ast.VNodeCall).Props.(*ast.ObjectExpression)
	if key := dProps.Properties[0].Key.(*ast.SimpleExpressionNode).Content; key != "innerHTML" {
		t.Errorf("v-html key = %q", key)
	}
	if !ctx.HasHelper(ast.ToDisplayString) {
		t.Error("v-text did not register toDisplayString")
	}
}

func TestTransform_ReportsMalformedDirectives(t *testing.T) {
	div := ast.NewElement("div", ast.ElementPlain, []ast.ElementProp{
		ast.NewDirective("on", exp("go"), nil, nil),
		ast.NewDirective("bind", nil, static("x"), nil),
		ast.NewDirective("on", exp("go"), static("click"), []string{"stop", "prevent"}),
	}, nil)
	ctx := Transform(ast.NewRoot([]ast.TemplateChildNode{div}), Options{})

	errs := ctx.Errors()
	if len(errs) != 3 {
		t.Fatalf("Errors() = %v, want 3 errors", errs)
	}
	if !strings.Contains(errs[2].Error(), "modifiers .stop.prevent") {
		t.Errorf("modifier error = %q", errs[2])
	}

	call := div.CodegenNode().(*ast.VNodeCall)
	if call.Props != nil {
		t.Errorf("props = %#v, want none for rejected bindings", call.Props)
	}
}

func TestTransform_TemplateIsCompiledAway(t *testing.T) {
	a := ast.NewElement("a", ast.ElementPlain, nil, nil)
	b := ast.NewText("b")
	tmpl := ast.NewElement("template", ast.ElementTemplate, []ast.ElementProp{
		ast.NewAttribute("id", ast.NewText("x")),
	}, []ast.TemplateChildNode{a, b})
	root := ast.NewRoot([]ast.TemplateChildNode{tmpl})

	Transform(root, Options{})

	if tmpl.CodegenNode() != nil {
		t.Errorf("template codegen = %#v, want nil", tmpl.CodegenNode())
	}
	if len(root.CodegenNode) != 2 {
		t.Fatalf("root codegen = %v, want flattened children", root.CodegenNode)
	}
	if root.CodegenNode[0] != a.CodegenNode().(*ast.VNodeCall) {
		t.Error("first root codegen is not the <a> vnode")
	}
	if root.CodegenNode[1] != b {
		t.Error("second root codegen is not the text node")
	}
}

func TestTransform_Interpolation(t *testing.T) {
	span := ast.NewElement("span", ast.ElementPlain, nil, []ast.TemplateChildNode{ast.NewInterpolation("count")})
	ctx := Transform(ast.NewRoot([]ast.TemplateChildNode{span}), Options{})

	// children finish first, so toDisplayString precedes the span's helper
	if diff := cmp.Diff([]string{"toDisplayString", "createElementVNode"}, helperNames(ctx)); diff != "" {
		t.Errorf("helpers mismatch (-want +got):\n%s", diff)
	}
	call := span.CodegenNode().(*ast.VNodeCall)
	children, ok := call.Children.(ast.TemplateChildren)
	if !ok || len(children) != 1 {
		t.Errorf("children = %#v", call.Children)
	}
}

func TestTransform_Deterministic(t *testing.T) {
	build := func() *ast.RootNode {
		return ast.NewRoot([]ast.TemplateChildNode{
			ast.NewElement("Foo", ast.ElementComponent, nil, nil),
			ast.NewElement("div", ast.ElementPlain, []ast.ElementProp{
				ast.NewDirective("tooltip", exp("t"), nil, nil),
			}, []ast.TemplateChildNode{ast.NewInterpolation("x")}),
		})
	}

	first := helperNames(Transform(build(), Options{}))
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, helperNames(Transform(build(), Options{}))); diff != "" {
			t.Fatalf("helper order changed between runs (-first +run):\n%s", diff)
		}
	}
}

func TestTransform_CustomNodeTransform(t *testing.T) {
	var order []string
	trace := func(node ast.Node, ctx *Context) func() {
		el, ok := node.(*ast.ElementNode)
		if !ok {
			return nil
		}
		order = append(order, "enter "+el.Tag)
		return func() {
			// later passes exit first, before the vnode call is built
			if el.CodegenNode() != nil {
				t.Errorf("exit of <%s> ran after TransformElement", el.Tag)
			}
			order = append(order, "exit "+el.Tag)
		}
	}

	inner := ast.NewElement("span", ast.ElementPlain, nil, nil)
	outer := ast.NewElement("div", ast.ElementPlain, nil, []ast.TemplateChildNode{inner})
	Transform(ast.NewRoot([]ast.TemplateChildNode{outer}), Options{NodeTransforms: []NodeTransform{trace}})

	want := []string{"enter div", "enter span", "exit span", "exit div"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestTransform_CursorRestoredForExit(t *testing.T) {
	type cursor struct {
		Parent ast.ParentNode
		Index  int
	}
	entered := map[ast.Node]cursor{}
	var mismatched []string

	check := func(node ast.Node, ctx *Context) func() {
		entered[node] = cursor{ctx.Parent, ctx.ChildIndex}
		return func() {
			got := cursor{ctx.Parent, ctx.ChildIndex}
			if got != entered[node] || ctx.CurrentNode != node {
				mismatched = append(mismatched, fmt.Sprintf("%T", node))
			}
		}
	}

	span := ast.NewElement("span", ast.ElementPlain, nil, []ast.TemplateChildNode{ast.NewText("x")})
	p := ast.NewElement("p", ast.ElementPlain, nil, []ast.TemplateChildNode{span})
	i := ast.NewElement("i", ast.ElementPlain, nil, []ast.TemplateChildNode{ast.NewText("y")})
	div := ast.NewElement("div", ast.ElementPlain, nil, []ast.TemplateChildNode{p, i})
	root := ast.NewRoot([]ast.TemplateChildNode{div})

	Transform(root, Options{NodeTransforms: []NodeTransform{check}})

	if len(mismatched) > 0 {
		t.Errorf("cursor changed between enter and exit for %v", mismatched)
	}
	if got := entered[i]; got.Parent != ast.ParentNode(div) || got.Index != 1 {
		t.Errorf("<i> entered with parent %T index %d, want *ast.ElementNode index 1", got.Parent, got.Index)
	}
	if got := entered[div]; got.Parent != ast.ParentNode(root) {
		t.Errorf("<div> entered with parent %T, want root", got.Parent)
	}
}

func TestToValidAssetID(t *testing.T) {
	tests := []struct{ name, kind, want string }{
		{"Foo", "component", "_component_Foo"},
		{"my-comp", "component", "_component_my_comp"},
		{"click-outside", "directive", "_directive_click_outside"},
		{"a.b", "component", "_component_a46b"},
	}
	for _, tt := range tests {
		if got := ToValidAssetID(tt.name, tt.kind); got != tt.want {
			t.Errorf("ToValidAssetID(%q, %q) = %q, want %q", tt.name, tt.kind, got, tt.want)
		}
	}
}

func TestToHandlerKey(t *testing.T) {
	tests := map[string]string{
		"click":        "onClick",
		"update-value": "onUpdateValue",
		"é":            "onÉ",
		"élan-vital":   "onÉlanVital",
		"über-ärger":   "onÜberÄrger",
		"-x":           "onX",
		"":             "",
	}
	for in, want := range tests {
		if got := toHandlerKey(in); got != want {
			t.Errorf("toHandlerKey(%q) = %q, want %q", in, got, want)
		}
	}
}
