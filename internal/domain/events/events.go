package events

import (
	"context"
	"sync"
	"time"

	"github.com/rafabene/avantpro-members/internal/domain/entities"
)

// Nomes dos eventos de conta
const (
	AccountPreDelete   = "account.pre_delete"
	AccountPostDelete  = "account.post_delete"
	AccountCreated     = "account.created"
	AccountUpdated     = "account.updated"
	AccountEnabled     = "account.enabled"
	AccountDisabled    = "account.disabled"
	AccountRoleAdded   = "account.role_added"
	AccountRoleRemoved = "account.role_removed"

	// Wildcard recebe todos os eventos
	Wildcard = "*"
)

// StorageEvent é o payload entregue aos listeners
type StorageEvent struct {
	Name       string
	Account    *entities.Account
	Role       string
	OccurredAt time.Time
}

// NewStorageEvent cria um evento para a conta
func NewStorageEvent(account *entities.Account) *StorageEvent {
	return &StorageEvent{Account: account, OccurredAt: time.Now().UTC()}
}

// WithRole anexa o role afetado ao evento
func (e *StorageEvent) WithRole(role string) *StorageEvent {
	e.Role = role
	return e
}

// Listener participa da operação: um erro aborta a operação em andamento
type Listener func(ctx context.Context, event *StorageEvent) error

// Observer apenas é notificado e não pode abortar nada
type Observer func(event *StorageEvent)

// Publisher é o que repositórios e services precisam para publicar eventos
type Publisher interface {
	Dispatch(ctx context.Context, name string, event *StorageEvent) error
}

// Dispatcher mantém listeners e observers por nome de evento
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
	observers map[string][]Observer
}

// NewDispatcher cria um Dispatcher vazio
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		listeners: make(map[string][]Listener),
		observers: make(map[string][]Observer),
	}
}

// Subscribe registra um listener síncrono
func (d *Dispatcher) Subscribe(name string, listener Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[name] = append(d.listeners[name], listener)
}

// Observe registra um observer. Se o contexto carregar uma Queue, a
// notificação só acontece quando a Queue for liberada.
func (d *Dispatcher) Observe(name string, observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers[name] = append(d.observers[name], observer)
}

// Dispatch executa os listeners na ordem de registro e para no primeiro erro.
// Observers só são notificados quando todos os listeners tiveram sucesso.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, event *StorageEvent) error {
	event.Name = name

	d.mu.RLock()
	listeners := append(append([]Listener{}, d.listeners[name]...), d.listeners[Wildcard]...)
	observers := append(append([]Observer{}, d.observers[name]...), d.observers[Wildcard]...)
	d.mu.RUnlock()

	for _, listener := range listeners {
		if err := listener(ctx, event); err != nil {
			return err
		}
	}

	if len(observers) == 0 {
		return nil
	}

	notify := func() {
		for _, observer := range observers {
			observer(event)
		}
	}

	if queue, ok := QueueFromContext(ctx); ok {
		queue.add(notify)
		return nil
	}

	notify()
	return nil
}

type queueKey struct{}

// Queue acumula notificações de observers até o commit de uma transação
type Queue struct {
	mu      sync.Mutex
	pending []func()
}

// WithQueue devolve um contexto cujas notificações ficam retidas na Queue
func WithQueue(ctx context.Context) (context.Context, *Queue) {
	q := &Queue{}
	return context.WithValue(ctx, queueKey{}, q), q
}

// QueueFromContext recupera a Queue do contexto
func QueueFromContext(ctx context.Context) (*Queue, bool) {
	q, ok := ctx.Value(queueKey{}).(*Queue)
	return q, ok
}

func (q *Queue) add(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, fn)
}

// Flush entrega as notificações retidas, na ordem
func (q *Queue) Flush() {
	q.mu.Lock()
	pending := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}

// Discard descarta as notificações retidas (rollback)
func (q *Queue) Discard() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = nil
}

// Len retorna quantas notificações estão retidas
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
