// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import (
	"github.com/chewxy/math32"
	"math/rand"
	"testing"
)

func BenchmarkAngle_Diff(b *testing.B) {
	const count = 1024
	angles := make([]Angle, count)
	for i := range angles {
		angles[i] = ToAngle(rand.Float32() * math32.Pi * 2)
	}
	b.ResetTimer()

	var acc Angle
	for i := 0; i < b.N; i++ {
		a := angles[i&(count-1)]
		b := angles[(i+count/2)&(count-1)]
		acc += a.Diff(b)
	}
	_ = acc
}

func BenchmarkAngle_Vec2f(b *testing.B) {
	const count = 1024
	angles := make([]Angle, count)
	for i := range angles {
		angles[i] = ToAngle(rand.Float32() * math32.Pi * 2)
	}
	b.ResetTimer()

	var acc Vec2f
	for i := 0; i < b.N; i++ {
		a := angles[i&(count-1)]
		acc = acc.Add(a.Vec2f())
	}
	_ = acc
}

func TestAngle_Vec2f(t *testing.T) {
	tests := []struct {
		angle Angle
		vec   Vec2f
	}{
		{0, East},
		{Pi / 2, South},
		{-Pi / 2, North},
		{Pi, West},
	}

	for _, test := range tests {
		v := test.angle.Vec2f()
		if !approx(v.X, test.vec.X) || !approx(v.Y, test.vec.Y) {
			t.Errorf("expected %s.Vec2f() = %v, got %v", test.angle, test.vec, v)
		}
	}
}

func TestAngle_Diff(t *testing.T) {
	errs := 0

	for step := float32(0.01); step < math32.Pi; step += 0.01 {
		for i := -math32.Pi * 2; i < math32.Pi*2; i += step {
			diff := ToAngle(i).Diff(ToAngle(i - step)).Float()
			if !approx(diff, step) {
				if errs++; errs > 20 {
					t.FailNow()
				}
				t.Errorf("%f expected %f, found %f", i, step, diff)
			}
		}

		for i := -math32.Pi * 2; i < math32.Pi*2; i += step {
			diff := ToAngle(i).Diff(ToAngle(i + step)).Float()
			if !approx(diff, -step) {
				if errs++; errs > 20 {
					t.FailNow()
				}
				t.Errorf("%f expected %f, found %f", i, -step, diff)
			}
		}
	}
}
