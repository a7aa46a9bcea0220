package palconfigs

import (
	"errors"

	"github.com/reusee/dscope"
	"github.com/reusee/palforth/cmds"
	"github.com/reusee/palforth/configs"
	"github.com/reusee/palforth/logs"
	"github.com/reusee/palforth/palvm"
	"github.com/reusee/palforth/vars"
)

var (
	paramSlotsFlag         = cmds.Var[int]("-param-slots")
	dataSlotsFlag          = cmds.Var[int]("-data-slots")
	returnDepthFlag        = cmds.Var[int]("-return-depth")
	intBytesFlag           = cmds.Var[int]("-int-bytes")
	scratchLimitFlag       = cmds.Var[int]("-scratch-limit")
	uncheckedOverflowFlag  = cmds.Switch("-unchecked-overflow")
	uncheckedUnderflowFlag = cmds.Switch("-unchecked-underflow")
	traceFlag              = cmds.Switch("-trace")
)

func (Module) Config(
	loader configs.Loader,
) palvm.Config {
	config := palvm.DefaultConfig()

	config.ParamSlots = vars.FirstNonZero(
		*paramSlotsFlag,
		configs.First[int](loader, "vm.param_slots"),
		config.ParamSlots,
	)
	config.DataSlots = vars.FirstNonZero(
		*dataSlotsFlag,
		configs.First[int](loader, "vm.data_slots"),
		config.DataSlots,
	)
	config.ReturnDepth = vars.FirstNonZero(
		*returnDepthFlag,
		configs.First[int](loader, "vm.return_depth"),
		config.ReturnDepth,
	)
	config.IntBytes = vars.FirstNonZero(
		*intBytesFlag,
		configs.First[int](loader, "vm.int_bytes"),
		config.IntBytes,
	)
	config.ScratchLimit = vars.FirstNonZero(
		*scratchLimitFlag,
		configs.First[int](loader, "vm.scratch_limit"),
	)

	config.UncheckedOverflow = *uncheckedOverflowFlag ||
		configs.First[bool](loader, "vm.unchecked_overflow")
	config.UncheckedUnderflow = *uncheckedUnderflowFlag ||
		configs.First[bool](loader, "vm.unchecked_underflow")
	config.Trace = *traceFlag ||
		configs.First[bool](loader, "vm.trace")

	return config
}

// Fork returns scope with the VM configuration resolved from the default
// config files and validated.
func Fork(scope dscope.Scope) (dscope.Scope, error) {
	return ForkPaths(scope, DefaultConfigPaths())
}

func ForkPaths(scope dscope.Scope, paths ConfigPaths) (dscope.Scope, error) {
	scope = scope.Fork(
		new(Module),
		dscope.Provide(paths),
	)
	var err error
	scope.Call(func(
		loader configs.Loader,
	) {
		var vm map[string]any
		if err = loader.AssignFirst("vm", &vm); errors.Is(err, configs.ErrValueNotFound) {
			err = nil
		}
	})
	if err != nil {
		return scope, err
	}
	scope.Call(func(
		config palvm.Config,
		logger logs.Logger,
	) {
		err = config.Validate()
		logger.Debug("vm config",
			"config", config,
		)
	})
	return scope, err
}
