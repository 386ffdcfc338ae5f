package transform

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
)

func fieldCtx(field string, rec Record) *FieldContext {
	return &FieldContext{Field: field, Record: RecordView{out: Record{}, in: rec}}
}

func TestSecureHashDigest(t *testing.T) {
	h, err := NewSecureHash(SecureHashConfig{Secret: "pepper"})
	if err != nil {
		t.Fatalf("NewSecureHash: %v", err)
	}

	out, keep, err := h.TransformField(fieldCtx("email", nil), "a@b.co")
	if err != nil || !keep {
		t.Fatalf("TransformField: keep=%v err=%v", keep, err)
	}

	mac := hmac.New(sha256.New, []byte("pepper"))
	mac.Write([]byte("a@b.co"))
	if out != hex.EncodeToString(mac.Sum(nil)) {
		t.Fatalf("digest mismatch: %v", out)
	}

	if _, err := NewSecureHash(SecureHashConfig{}); err == nil {
		t.Error("want error for empty secret")
	}
}

func TestRedactWithChar(t *testing.T) {
	r, err := NewRedactWithChar(RedactWithCharConfig{})
	if err != nil {
		t.Fatalf("NewRedactWithChar: %v", err)
	}

	out, keep, err := r.TransformField(fieldCtx("phone", nil), "(555) 867-5309")
	if err != nil || !keep {
		t.Fatalf("TransformField: keep=%v err=%v", keep, err)
	}
	if out != "(XXX) XXX-XXXX" {
		t.Fatalf("masked = %q", out)
	}

	label, text, keep, err := r.TransformEntity(fieldCtx("phone", nil),
		Label{Label: "phone_number"}, "867-5309")
	if err != nil || !keep {
		t.Fatalf("TransformEntity: keep=%v err=%v", keep, err)
	}
	if text != "XXX-XXXX" || label.Label != "REDACTED_phone_number" {
		t.Fatalf("entity = %q / %q", text, label.Label)
	}

	if _, err := NewRedactWithChar(RedactWithCharConfig{Char: "ab"}); err == nil {
		t.Error("want error for multi-character char")
	}
}

func TestRedactWithLabelRequiresMeta(t *testing.T) {
	r, err := NewRedactWithLabel(RedactWithLabelConfig{})
	if err != nil {
		t.Fatalf("NewRedactWithLabel: %v", err)
	}

	if _, keep, err := r.TransformField(fieldCtx("email", nil), "a@b.co"); err != nil || keep {
		t.Fatalf("no metadata: keep=%v err=%v, want drop", keep, err)
	}

	ctx := fieldCtx("email", nil)
	ctx.Meta = &FieldMeta{NER: NER{Labels: []Label{{Label: "email_address"}}}}
	out, keep, err := r.TransformField(ctx, "a@b.co")
	if err != nil || !keep {
		t.Fatalf("TransformField: keep=%v err=%v", keep, err)
	}
	if out != "EMAIL_ADDRESS" {
		t.Fatalf("out = %v", out)
	}
}

func TestBucketNumericAndOutliers(t *testing.T) {
	b, err := NewBucket(BucketConfig{
		Buckets:           BucketRange(0, 30, 10),
		Labels:            []any{"low", "mid", "high"},
		LowerOutlierLabel: "under",
		UpperOutlierLabel: "over",
	})
	if err != nil {
		t.Fatalf("NewBucket: %v", err)
	}

	cases := map[any]any{
		-1:    "under",
		0:     "low",
		9.5:   "low",
		10:    "mid",
		25:    "high",
		30:    "over",
		99:    "over",
		"abc": "abc", // unclassifiable, passes through
	}
	for in, want := range cases {
		out, keep, err := b.TransformField(fieldCtx("age", nil), in)
		if err != nil || !keep {
			t.Fatalf("TransformField(%v): keep=%v err=%v", in, keep, err)
		}
		if out != want {
			t.Errorf("bucket(%v) = %v, want %v", in, out, want)
		}
	}
}

func TestBucketConfigValidation(t *testing.T) {
	if _, err := NewBucket(BucketConfig{Buckets: []any{1}, Labels: []any{}}); err == nil {
		t.Error("want error for fewer than 2 boundaries")
	}
	if _, err := NewBucket(BucketConfig{Buckets: []any{1, 2, 3}, Labels: []any{"a"}}); err == nil {
		t.Error("want error for label/bucket count mismatch")
	}
}

func TestFakeConstantDeterminism(t *testing.T) {
	f, err := NewFakeConstant(FakeConstantConfig{Seed: 42, Labels: []string{"email_address"}})
	if err != nil {
		t.Fatalf("NewFakeConstant: %v", err)
	}

	a, keep, err := f.TransformField(fieldCtx("email", nil), "real@example.com")
	if err != nil || !keep {
		t.Fatalf("TransformField: keep=%v err=%v", keep, err)
	}
	b, _, err := f.TransformField(fieldCtx("email", nil), "real@example.com")
	if err != nil {
		t.Fatalf("TransformField: %v", err)
	}
	if a != b {
		t.Fatalf("same input diverged: %v vs %v", a, b)
	}
	if !strings.Contains(a.(string), "@") {
		t.Fatalf("fake email has no @: %v", a)
	}
	if a == "real@example.com" {
		t.Fatal("fake equals original")
	}

	c, _, err := f.TransformField(fieldCtx("email", nil), "other@example.com")
	if err != nil {
		t.Fatalf("TransformField: %v", err)
	}
	if c == a {
		t.Fatalf("distinct inputs collided: %v", c)
	}

	// A second instance with the same seed agrees; a different seed does not.
	same, err := NewFakeConstant(FakeConstantConfig{Seed: 42, Labels: []string{"email_address"}})
	if err != nil {
		t.Fatalf("NewFakeConstant: %v", err)
	}
	d, _, err := same.TransformField(fieldCtx("email", nil), "real@example.com")
	if err != nil {
		t.Fatalf("TransformField: %v", err)
	}
	if d != a {
		t.Fatalf("same seed diverged: %v vs %v", d, a)
	}

	if _, err := NewFakeConstant(FakeConstantConfig{Labels: []string{"quantum_id"}}); err == nil {
		t.Error("want error for unsupported label")
	}
	if _, err := NewFakeConstant(FakeConstantConfig{}); err == nil {
		t.Error("want error for missing labels")
	}
}

func TestCombine(t *testing.T) {
	c, err := NewCombine(CombineConfig{Refs: NewFieldRefs("city", "state"), Separator: ", "})
	if err != nil {
		t.Fatalf("NewCombine: %v", err)
	}

	ctx := fieldCtx("street", Record{"city": "Peoria", "state": "IL", "street": "12 Main St"})
	out, keep, err := c.TransformField(ctx, "12 Main St")
	if err != nil || !keep {
		t.Fatalf("TransformField: keep=%v err=%v", keep, err)
	}
	if out != "12 Main St, Peoria, IL" {
		t.Fatalf("combined = %q", out)
	}

	ctx = fieldCtx("street", Record{"street": "12 Main St"})
	if _, _, err := c.TransformField(ctx, "12 Main St"); err == nil {
		t.Error("want error for missing referenced field")
	}

	if _, err := NewCombine(CombineConfig{}); err == nil {
		t.Error("want error for missing refs")
	}
}

func TestFormatSubstitution(t *testing.T) {
	f, err := NewFormat(FormatConfig{Pattern: `[^\d]`, Replacement: ""})
	if err != nil {
		t.Fatalf("NewFormat: %v", err)
	}

	out, keep, err := f.TransformField(fieldCtx("phone", nil), "(555) 867-5309")
	if err != nil || !keep {
		t.Fatalf("TransformField: keep=%v err=%v", keep, err)
	}
	if out != "5558675309" {
		t.Fatalf("formatted = %q", out)
	}

	if _, err := NewFormat(FormatConfig{Pattern: "("}); err == nil {
		t.Error("want error for invalid pattern")
	}
	if _, err := NewFormat(FormatConfig{}); err == nil {
		t.Error("want error for empty pattern")
	}
}

func TestFieldRefPrefersOutput(t *testing.T) {
	view := RecordView{
		out: Record{"name": "transformed"},
		in:  Record{"name": "original", "age": 4},
	}

	got, err := NewFieldRef("name").ResolveOne(view)
	if err != nil {
		t.Fatalf("ResolveOne: %v", err)
	}
	if got != "transformed" {
		t.Fatalf("ResolveOne = %v, want output value", got)
	}

	got, err = NewFieldRef("age").ResolveOne(view)
	if err != nil || got != 4 {
		t.Fatalf("fallback = %v, %v", got, err)
	}

	if _, err := NewFieldRef("absent").ResolveOne(view); err == nil {
		t.Error("want error for unresolvable reference")
	}
}

func TestDataPathChainFlattening(t *testing.T) {
	h, err := NewSecureHash(SecureHashConfig{Secret: "k"})
	if err != nil {
		t.Fatalf("NewSecureHash: %v", err)
	}
	d, err := NewDrop(DropConfig{})
	if err != nil {
		t.Fatalf("NewDrop: %v", err)
	}

	dp, err := NewDataPath("x", []Transformer{Chain(h, Chain(d))}, "")
	if err != nil {
		t.Fatalf("NewDataPath: %v", err)
	}
	if len(dp.xforms) != 2 || dp.xforms[0] != Transformer(h) || dp.xforms[1] != Transformer(d) {
		t.Fatalf("flattened chain = %v", dp.xforms)
	}

	if _, err := NewDataPath("x", []Transformer{nil}, ""); err == nil {
		t.Error("want error for nil transformer")
	}
	if _, err := NewDataPath("", nil, ""); err == nil {
		t.Error("want error for empty pattern")
	}
}
