package main

import (
	"github.com/reusee/dscope"
	"github.com/reusee/palforth/debugs"
	"github.com/reusee/palforth/logs"
	"github.com/reusee/palforth/palvm"
)

type Module struct {
	dscope.Module
	Logs   logs.Module
	VM     palvm.Module
	Debugs debugs.Module
}
