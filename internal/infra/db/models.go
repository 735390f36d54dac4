package db

import "time"

// Column and table names keep the registry's original Spanish schema so the
// service can run against an existing database.

type LeaderModel struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Name      string `gorm:"column:nombre;not null"`
	Zone      *string `gorm:"column:zona"`
	DPI       string `gorm:"column:dpi;uniqueIndex;not null"`
	State     string `gorm:"column:estado;not null"`
	DeletedAt *time.Time `gorm:"column:deleted_at;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (LeaderModel) TableName() string {
	return "lideres"
}

type SheetModel struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	Number     int    `gorm:"column:numero_hoja;uniqueIndex;not null"`
	LeaderID   string `gorm:"column:lider_id;type:uuid;index;not null"`
	State      string `gorm:"column:estado_fisico;index;not null"`
	AssignedAt time.Time  `gorm:"column:fecha_asignacion;not null"`
	ReceivedAt *time.Time `gorm:"column:fecha_recepcion"`
	CreatedAt  time.Time  `gorm:"not null"`
	UpdatedAt  time.Time  `gorm:"not null"`
}

func (SheetModel) TableName() string {
	return "hojas"
}

type AdhesionModel struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	SheetID     string `gorm:"column:hoja_id;type:uuid;uniqueIndex:idx_hoja_linea;not null"`
	Line        int    `gorm:"column:linea_id;uniqueIndex:idx_hoja_linea;not null"`
	CitizenDPI  *string `gorm:"column:dpi_ciudadano;index"`
	CitizenName *string `gorm:"column:nombre_ciudadano"`
	State       string  `gorm:"column:estado_legal;index;not null"`
	Cause       *string `gorm:"column:causa_rechazo"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (AdhesionModel) TableName() string {
	return "adhesiones"
}
