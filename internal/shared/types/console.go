package types

// ConsoleInterface é a saída do sync: mensagens de log, spinners, barras de
// progresso e tabelas. Há uma implementação interativa e uma estruturada (JSON).
type ConsoleInterface interface {
	Print(a ...interface{})
	Printf(format string, a ...interface{})
	Println(a ...interface{})

	LogInfo(format string, a ...interface{})
	LogWarning(format string, a ...interface{})
	LogError(format string, a ...interface{})
	LogSuccess(format string, a ...interface{})

	Status(message string) StatusHandle
	ProgressWithTotal(total int) ProgressHandle

	CreateTable() TableInterface
	DisplayTable(title string, table TableInterface)
}

// StatusHandle controla um spinner de status em andamento.
type StatusHandle interface {
	Update(message string)
	Stop()
}

// ProgressHandle avança uma barra de progresso.
type ProgressHandle interface {
	Increment()
	Stop()
}

// TableInterface monta uma tabela e a renderiza como texto.
type TableInterface interface {
	AddColumn(name string, options ...interface{})
	AddRow(cells ...interface{})
	Render() string
}
