package utils

import (
	"errors"
	"testing"
)

func TestClassParamsValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*ClassParams)
		expectErr bool
	}{
		{"default class", func(c *ClassParams) {}, false},
		{"zero gates", func(c *ClassParams) { c.NG = 0; c.N = c.NI + 1 }, true},
		{"zero inputs", func(c *ClassParams) { c.NI = 0; c.N = c.NG + 1 }, true},
		{"inconsistent n", func(c *ClassParams) { c.N = 40 }, true},
		{"m too small", func(c *ClassParams) { c.M = 1 }, true},
		{"even modulus", func(c *ClassParams) { c.P = 1678320 }, true},
		{"generator zero", func(c *ClassParams) { c.G = 0 }, true},
		{"generator one", func(c *ClassParams) { c.G = 1 }, true},
		{"generator out of field", func(c *ClassParams) { c.G = c.P }, true},
		{"n does not divide p-1", func(c *ClassParams) { c.NG = 6; c.N = 39 }, true},
		{"m does not divide p-1", func(c *ClassParams) { c.M = 11 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultClass()
			tt.mutate(&c)
			err := c.Validate()
			if tt.expectErr {
				if !errors.Is(err, ErrInvalidParams) {
					t.Errorf("err = %v, want ErrInvalidParams", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestClassParamsDerivedSizes(t *testing.T) {
	c := DefaultClass()
	if c.MatrixSize() != 37 {
		t.Errorf("MatrixSize = %d, want 37", c.MatrixSize())
	}
	if c.InputLen() != 33 {
		t.Errorf("InputLen = %d, want 33", c.InputLen())
	}
}

func TestParseClasses(t *testing.T) {
	data := []byte(`{
		"1": {"n_g": 4, "n_i": 32, "n": 37, "m": 8, "p": 1678321, "g": 11}
	}`)
	classes, err := ParseClasses(data)
	if err != nil {
		t.Fatalf("ParseClasses: %v", err)
	}
	if got := classes["1"]; got != DefaultClass() {
		t.Errorf("class 1 = %+v, want default class", got)
	}

	bad := []byte(`{"1": {"n_g": 4, "n_i": 32, "n": 40, "m": 8, "p": 1678321, "g": 11}}`)
	if _, err := ParseClasses(bad); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("err = %v, want ErrInvalidParams", err)
	}

	if _, err := ParseClasses([]byte("not json")); err == nil {
		t.Error("expected decode error, got nil")
	}
}
