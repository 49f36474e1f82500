// ./main.go
package main

import (
	"github.com/xkilldash9x/einfill/cmd"
)

func main() {
	cmd.Execute()
}
