// Package physics implements the Gray-Scott reaction-diffusion model.
//
// [GrayScott] owns two concentration fields u and v on a periodic grid and
// advances them with explicit Euler steps:
//
//	du/dt = Du*lap(u) - u*v*v + F*(1-u)
//	dv/dt = Dv*lap(v) + u*v*v - (F+k)*v
//
// The step size is recomputed on every [GrayScott.Update] as
// 0.2/max(Du, Dv), so parameters can be changed between steps.
//
//	g, _ := physics.NewGrayScott(256, 256, physics.WithSeed(1))
//	g.SetF(0.035)
//	for i := 0; i < 1000; i++ {
//	    if err := g.Update(); err != nil {
//	        return err
//	    }
//	}
package physics
