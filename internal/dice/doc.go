// Package dice drops rigid boxes into a physics world and drives them
// through a drop, explosion and pull-back cycle.
//
// A Scene owns the world, the collision space with its static planes, and
// the dice. Front ends call Frame once per tick, render Dice, and forward
// key presses to HandleKey:
//
//	scene, _ := dice.NewScene(cfg, logger)
//	pacer := dice.NewPacer(cfg.World.FPS)
//	for {
//		pacer.Wait()
//		if err := scene.Frame(); err != nil {
//			return err
//		}
//		draw(scene.Dice())
//		pacer.Mark()
//	}
package dice
