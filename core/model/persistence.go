package model

import (
	"encoding/json"
	"io"
	"os"

	"github.com/YuminosukeSato/shapeml/pkg/errors"
)

// SaveJSON はvをJSONとしてファイルに保存する
//
// パラメータ:
//   - v: 保存する値（永続化用の構造体）
//   - filename: 保存先のファイルパス
//
// 戻り値:
//   - error: 作成・書き込み・クローズに失敗した場合のIOError
//
// 使用例:
//
//	err := model.SaveJSON(&weights, "model.json")
func SaveJSON(v interface{}, filename string) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return errors.NewIOError("create", filename, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.NewIOError("close", filename, cerr)
		}
	}()

	if err := encodeJSON(v, file); err != nil {
		return errors.NewIOError("write", filename, err)
	}
	return nil
}

// LoadJSON はファイルからJSONを読み込みvに格納する
//
// パラメータ:
//   - v: 読み込み先（ポインタ）
//   - filename: 読み込み元のファイルパス
//
// 戻り値:
//   - error: オープン・デコードに失敗した場合のIOError
func LoadJSON(v interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.NewIOError("open", filename, err)
	}
	defer file.Close()

	if err := decodeJSON(v, file); err != nil {
		return errors.NewIOError("read", filename, err)
	}
	return nil
}

// EncodeJSON はvをインデント付きJSONとしてio.Writerに書き込む
func EncodeJSON(v interface{}, w io.Writer) error {
	if err := encodeJSON(v, w); err != nil {
		return errors.NewIOError("encode", "", err)
	}
	return nil
}

// DecodeJSON はio.ReaderからJSONを読み込む
// 未知のフィールドを含むドキュメントは拒否する
func DecodeJSON(v interface{}, r io.Reader) error {
	if err := decodeJSON(v, r); err != nil {
		return errors.NewIOError("decode", "", err)
	}
	return nil
}

func encodeJSON(v interface{}, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func decodeJSON(v interface{}, r io.Reader) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}
