package main

import "github.com/eleven-am/interview-backend/internal/bootstrap"

func main() {
	bootstrap.Run()
}
