package stream

import (
	"testing"

	"github.com/aws/aws-lambda-go/events"
)

// --- getStringAttr Tests ---

func TestGetStringAttr_ExistingString(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"identity": events.NewStringAttribute("test-value"),
	}

	result := getStringAttr(image, "identity")
	if result != "test-value" {
		t.Errorf("expected 'test-value', got %q", result)
	}
}

func TestGetStringAttr_NumberAttribute(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"identity": events.NewNumberAttribute("12345"),
	}

	result := getStringAttr(image, "identity")
	if result != "12345" {
		t.Errorf("expected '12345', got %q", result)
	}
}

func TestGetStringAttr_MissingKey(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"other": events.NewStringAttribute("value"),
	}

	result := getStringAttr(image, "identity")
	if result != "" {
		t.Errorf("expected empty string for missing key, got %q", result)
	}
}

func TestGetStringAttr_NilImage(t *testing.T) {
	var image map[string]events.DynamoDBAttributeValue

	result := getStringAttr(image, "identity")
	if result != "" {
		t.Errorf("expected empty string for nil image, got %q", result)
	}
}

func TestGetStringAttr_UnsupportedType(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"identity": events.NewBooleanAttribute(true),
	}

	result := getStringAttr(image, "identity")
	if result != "" {
		t.Errorf("expected empty string for boolean attribute, got %q", result)
	}
}

func TestGetStringAttr_UnicodeValue(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"mob": events.NewStringAttribute("日本語テスト"),
	}

	result := getStringAttr(image, "mob")
	if result != "日本語テスト" {
		t.Errorf("expected '日本語テスト', got %q", result)
	}
}

func BenchmarkGetStringAttr(b *testing.B) {
	image := map[string]events.DynamoDBAttributeValue{
		"identity": events.NewStringAttribute("benchmark-value"),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		getStringAttr(image, "identity")
	}
}

func TestLookupStringAttr_EmptyStringIsPresent(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"mob": events.NewStringAttribute(""),
	}

	v, ok := lookupStringAttr(image, "mob")
	if !ok || v != "" {
		t.Errorf("expected present empty string, got %q (present=%v)", v, ok)
	}
	if _, ok := lookupStringAttr(image, "missing"); ok {
		t.Error("expected missing attribute to be absent")
	}
}
