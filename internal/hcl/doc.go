// Package hcl provides the HCL implementation of config.Loader. It parses
// game scripts, translates their blocks into the format-agnostic config
// model, and binds attribute values to Go types through cty.
//
// A script looks like this:
//
//	rules {
//	  move_limit = 20
//	  step_delay = "600ms"
//	}
//
//	puzzle {
//	  agent     = [0, 0]
//	  facing    = "right"
//	  goal      = [3, 2]
//	  obstacles = [[1, 1], [2, 1]]
//	}
//
//	program "zigzag" {
//	  mode = "loop"
//	  repeat {
//	    count = 2
//	    forward {}
//	    turn_right {}
//	  }
//	}
//
// Command blocks inside a program keep their source order.
package hcl
