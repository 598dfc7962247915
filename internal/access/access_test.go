package access

import (
	"errors"
	"testing"

	"bitwise74/files-api/internal/apperr"
	"bitwise74/files-api/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestCheckOwner(t *testing.T) {
	owner := model.NewRecordID()
	f := &model.File{ID: model.NewRecordID(), UserID: owner, Type: model.TypeFile}

	assert.NoError(t, CheckOwner(f, owner))
	assert.ErrorIs(t, CheckOwner(f, model.NewRecordID()), apperr.NotFound())
	assert.ErrorIs(t, CheckOwner(f, model.RecordID{}), apperr.NotFound())
	assert.ErrorIs(t, CheckOwner(nil, owner), apperr.NotFound())
}

func TestCheckRead(t *testing.T) {
	owner := model.NewRecordID()
	f := &model.File{ID: model.NewRecordID(), UserID: owner, Type: model.TypeFile}

	assert.NoError(t, CheckRead(f, owner))
	assert.ErrorIs(t, CheckRead(f, model.RecordID{}), apperr.NotFound())
	assert.ErrorIs(t, CheckRead(f, model.NewRecordID()), apperr.NotFound())

	f.IsPublic = true
	assert.NoError(t, CheckRead(f, model.RecordID{}))
	assert.NoError(t, CheckRead(f, model.NewRecordID()))
}

func TestCheckContent(t *testing.T) {
	assert.ErrorIs(t, CheckContent(&model.File{Type: model.TypeFolder}), ErrFolderContent)
	assert.NoError(t, CheckContent(&model.File{Type: model.TypeFile}))
	assert.NoError(t, CheckContent(&model.File{Type: model.TypeImage}))
}

func TestCheckParent(t *testing.T) {
	id := model.NewRecordID()

	assert.NoError(t, CheckParent(model.RecordID{}, nil, nil))
	assert.NoError(t, CheckParent(id, &model.File{Type: model.TypeFolder}, nil))

	err := CheckParent(id, nil, apperr.ErrNotFound)
	assert.ErrorIs(t, err, apperr.BadRequest("Parent not found"))

	err = CheckParent(id, &model.File{Type: model.TypeImage}, nil)
	assert.ErrorIs(t, err, apperr.BadRequest("Parent is not a folder"))

	err = CheckParent(id, nil, errors.New("boom"))
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}
