package biome

// ArchetypeID - интернированный идентификатор архетипа дерева ("oak", "pine", ...)
type ArchetypeID uint16

// ArchetypeTable хранит имена архетипов. Заполняется только построителем,
// после Build доступна только на чтение.
type ArchetypeTable struct {
	names []string
	ids   map[string]ArchetypeID
}

func newArchetypeTable() *ArchetypeTable {
	return &ArchetypeTable{ids: make(map[string]ArchetypeID)}
}

// intern возвращает идентификатор имени, добавляя его при необходимости
func (t *ArchetypeTable) intern(name string) ArchetypeID {
	if id, ok := t.ids[name]; ok {
		return id
	}
	id := ArchetypeID(len(t.names))
	t.names = append(t.names, name)
	t.ids[name] = id
	return id
}

// Name возвращает имя архетипа
func (t *ArchetypeTable) Name(id ArchetypeID) string {
	if int(id) >= len(t.names) {
		return ""
	}
	return t.names[id]
}

// Lookup ищет идентификатор по имени
func (t *ArchetypeTable) Lookup(name string) (ArchetypeID, bool) {
	id, ok := t.ids[name]
	return id, ok
}

// Len возвращает количество архетипов
func (t *ArchetypeTable) Len() int {
	return len(t.names)
}
