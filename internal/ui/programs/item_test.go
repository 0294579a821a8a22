package programs

import (
	"strings"
	"testing"

	"github.com/nhle/adchat/internal/model"
)

func TestProgramDetailFormatsTuition(t *testing.T) {
	p := model.Program{
		Description: "Đào tạo kỹ sư phần mềm",
		Duration:    "4.5 năm",
		TuitionFee:  12000000,
	}

	detail := programDetail(p)
	if !strings.Contains(detail, "Học phí: 12.000.000 VNĐ/năm") {
		t.Errorf("detail = %q, want formatted tuition", detail)
	}
	if !strings.Contains(detail, "4.5 năm") {
		t.Errorf("detail = %q, want duration", detail)
	}
}

func TestProgramDetailOmitsMissingFields(t *testing.T) {
	detail := programDetail(model.Program{Description: "Mô tả"})
	if detail != "Mô tả" {
		t.Errorf("detail = %q, want description only", detail)
	}
}

func TestFormatVND(t *testing.T) {
	cases := []struct {
		amount int64
		want   string
	}{
		{500, "500"},
		{1000, "1.000"},
		{25000000, "25.000.000"},
		{123456789, "123.456.789"},
	}
	for _, c := range cases {
		if got := formatVND(c.amount); got != c.want {
			t.Errorf("formatVND(%d) = %q, want %q", c.amount, got, c.want)
		}
	}
}
