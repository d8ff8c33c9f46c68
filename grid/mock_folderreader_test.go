package grid_test

import (
	"os"
	"reflect"

	"github.com/golang/mock/gomock"
)

// MockFolderReader is the shape mockgen would generate for grid.FolderReader
// (`mockgen -source=loader.go -destination=mock_folderreader_test.go`),
// written by hand here since the toolchain is not run as part of this build.
type MockFolderReader struct {
	ctrl     *gomock.Controller
	recorder *MockFolderReaderMockRecorder
}

// MockFolderReaderMockRecorder is the mock recorder for MockFolderReader.
type MockFolderReaderMockRecorder struct {
	mock *MockFolderReader
}

// NewMockFolderReader creates a new mock instance.
func NewMockFolderReader(ctrl *gomock.Controller) *MockFolderReader {
	mock := &MockFolderReader{ctrl: ctrl}
	mock.recorder = &MockFolderReaderMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockFolderReader) EXPECT() *MockFolderReaderMockRecorder {
	return m.recorder
}

// ReadDir mocks grid.FolderReader.ReadDir.
func (m *MockFolderReader) ReadDir(path string) ([]os.DirEntry, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ReadDir", path)
	ret0, _ := ret[0].([]os.DirEntry)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ReadDir indicates an expected call of ReadDir.
func (mr *MockFolderReaderMockRecorder) ReadDir(path interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReadDir", reflect.TypeOf((*MockFolderReader)(nil).ReadDir), path)
}

// ReadFile mocks grid.FolderReader.ReadFile.
func (m *MockFolderReader) ReadFile(path string) ([]byte, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ReadFile", path)
	ret0, _ := ret[0].([]byte)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ReadFile indicates an expected call of ReadFile.
func (mr *MockFolderReaderMockRecorder) ReadFile(path interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReadFile", reflect.TypeOf((*MockFolderReader)(nil).ReadFile), path)
}

// Stat mocks grid.FolderReader.Stat.
func (m *MockFolderReader) Stat(path string) (os.FileInfo, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Stat", path)
	ret0, _ := ret[0].(os.FileInfo)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Stat indicates an expected call of Stat.
func (mr *MockFolderReaderMockRecorder) Stat(path interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Stat", reflect.TypeOf((*MockFolderReader)(nil).Stat), path)
}
