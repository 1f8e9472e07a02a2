package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"

	"github.com/diillson/aws-cur-sync/internal/shared/types"
)

// Console é a implementação interativa do ConsoleInterface, baseada no pterm.
// As mensagens podem vir de vários workers ao mesmo tempo: tudo o que escreve
// em out, inclusive a barra de progresso, passa por mu.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	live    bool
	info    pterm.PrefixPrinter
	warning pterm.PrefixPrinter
	err     pterm.PrefixPrinter
	success pterm.PrefixPrinter
}

var _ types.ConsoleInterface = (*Console)(nil)

// NewConsole cria um novo Console que escreve no stdout.
func NewConsole() *Console {
	return NewConsoleWithWriter(os.Stdout)
}

// NewConsoleWithWriter cria um Console que escreve em w. Spinner e barra de
// progresso só são animados quando w é um terminal.
func NewConsoleWithWriter(w io.Writer) *Console {
	return &Console{
		out:     w,
		live:    isTerminal(w),
		info:    *pterm.Info.WithWriter(w),
		warning: *pterm.Warning.WithWriter(w),
		err:     *pterm.Error.WithWriter(w),
		success: *pterm.Success.WithWriter(w),
	}
}

// WithRunID marca cada mensagem com o id da execução.
func (c *Console) WithRunID(runID string) *Console {
	scope := pterm.Scope{Text: runID, Style: pterm.NewStyle(pterm.FgGray)}
	c.info = *c.info.WithScope(scope)
	c.warning = *c.warning.WithScope(scope)
	c.err = *c.err.WithScope(scope)
	c.success = *c.success.WithScope(scope)
	return c
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// Print imprime no console.
func (c *Console) Print(a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, a...)
}

// Printf imprime uma string formatada no console.
func (c *Console) Printf(format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, a...)
}

// Println imprime no console com uma nova linha.
func (c *Console) Println(a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, a...)
}

// LogInfo registra uma mensagem de informação.
func (c *Console) LogInfo(format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.info.Printfln(format, a...)
}

// LogWarning registra uma mensagem de aviso.
func (c *Console) LogWarning(format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warning.Printfln(format, a...)
}

// LogError registra uma mensagem de erro.
func (c *Console) LogError(format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err.Printfln(format, a...)
}

// LogSuccess registra uma mensagem de sucesso.
func (c *Console) LogSuccess(format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.success.Printfln(format, a...)
}

// Cores predefinidas para uso consistente
var (
	BrightYellow = color.New(color.FgYellow, color.Bold).SprintFunc()
	BrightRed    = color.New(color.FgRed, color.Bold).SprintFunc()
	BrightCyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// statusHandle é uma implementação do StatusHandle. Fora de um terminal a
// mensagem vira uma linha de log.
type statusHandle struct {
	c       *Console
	spinner *pterm.SpinnerPrinter
}

// Status cria um spinner de status com a mensagem especificada.
func (c *Console) Status(message string) types.StatusHandle {
	if !c.live {
		c.LogInfo("%s", message)
		return &statusHandle{c: c}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	spinner, _ := pterm.DefaultSpinner.WithWriter(c.out).Start(message)
	return &statusHandle{c: c, spinner: spinner}
}

// Update atualiza a mensagem de status.
func (h *statusHandle) Update(message string) {
	if h.spinner == nil {
		h.c.LogInfo("%s", message)
		return
	}
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	h.spinner.UpdateText(message)
}

// Stop pára o spinner de status.
func (h *statusHandle) Stop() {
	if h.spinner == nil {
		return
	}
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	_ = h.spinner.Stop()
}

// progressHandle é uma implementação do ProgressHandle. Increment é chamado
// pelos workers em paralelo.
type progressHandle struct {
	c     *Console
	bar   *pterm.ProgressbarPrinter
	total int
	done  int
}

// ProgressWithTotal cria a barra de progresso do sync. Sem terminal, só o
// total concluído é registrado no Stop.
func (c *Console) ProgressWithTotal(total int) types.ProgressHandle {
	h := &progressHandle{c: c, total: total}
	if !c.live {
		return h
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	// Sem tempo decorrido: o pterm o redesenha numa goroutine própria, fora de mu.
	h.bar, _ = pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle("Syncing catalog entities").
		WithShowElapsedTime(false).
		WithShowCount(true).
		WithRemoveWhenDone(false).
		WithWriter(c.out).
		Start()
	return h
}

// Increment incrementa a barra de progresso.
func (h *progressHandle) Increment() {
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	h.done++
	if h.bar != nil {
		h.bar.Increment()
	}
}

// Stop pára a barra de progresso.
func (h *progressHandle) Stop() {
	h.c.mu.Lock()
	bar, done, total := h.bar, h.done, h.total
	if bar != nil {
		_, _ = bar.Stop()
	}
	h.c.mu.Unlock()

	if bar == nil && total > 0 {
		h.c.LogInfo("Synced %d/%d catalog entities", done, total)
	}
}

// Table é uma implementação do TableInterface.
type Table struct {
	columns []string
	rows    [][]string
}

// CreateTable cria uma nova tabela.
func (c *Console) CreateTable() types.TableInterface {
	return &Table{
		columns: []string{},
		rows:    [][]string{},
	}
}

// AddColumn adiciona uma coluna à tabela.
func (t *Table) AddColumn(name string, options ...interface{}) {
	t.columns = append(t.columns, name)
}

// AddRow adiciona uma linha à tabela.
func (t *Table) AddRow(cells ...interface{}) {
	processedCells := make([]string, len(cells))
	for i, cell := range cells {
		processedCells[i] = fmt.Sprint(cell)
	}
	t.rows = append(t.rows, processedCells)
}

// Render renderiza a tabela como uma string.
func (t *Table) Render() string {
	tableData := pterm.TableData{t.columns}
	for _, row := range t.rows {
		tableData = append(tableData, row)
	}

	table := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(tableData)

	renderedTable, _ := table.Srender()
	return renderedTable
}

// DisplayTable exibe a tabela dentro de um painel com título.
func (c *Console) DisplayTable(title string, table types.TableInterface) {
	panel := pterm.DefaultBox.
		WithTitle(title).
		WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).
		Sprint(table.Render())

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, "\n"+panel)
}
