package main

import "github.com/tayloree/order-catalog/cmd"

func main() {
	cmd.Execute()
}
