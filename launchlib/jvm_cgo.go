// Copyright 2025 Palantir Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build cgo

package launchlib

/*
#include <jni.h>
#include <stdlib.h>

// These helpers exist because Go cannot call through a JNI function
// pointer directly: JNIEnv/JavaVM are both "pointer to pointer to a
// struct of function pointers" (a C++-style vtable), and dereferencing
// that shape from Go requires cgo anyway. Keeping the vtable calls in C
// also avoids hand-rolling the table's per-platform calling convention,
// which is exactly the risk that ruled out a pure-Go JNI implementation
// (see DESIGN.md).

typedef jint (*jaunch_create_vm_fn)(JavaVM **, void **, void *);

static jint jaunch_create_vm(void *fn, JavaVM **pvm, JNIEnv **penv, jint nOptions, char **options) {
    JavaVMOption *opts = NULL;
    if (nOptions > 0) {
        opts = (JavaVMOption *)malloc(sizeof(JavaVMOption) * nOptions);
        for (jint i = 0; i < nOptions; i++) {
            opts[i].optionString = options[i];
            opts[i].extraInfo = NULL;
        }
    }
    JavaVMInitArgs args;
    args.version = JNI_VERSION_1_8;
    args.options = opts;
    args.nOptions = nOptions;
    args.ignoreUnrecognized = JNI_FALSE;

    jaunch_create_vm_fn create = (jaunch_create_vm_fn)fn;
    jint result = create(pvm, (void **)penv, &args);
    if (opts != NULL) free(opts);
    return result;
}

static jint jaunch_attach_current_thread(JavaVM *vm, JNIEnv **penv) {
    return (*vm)->AttachCurrentThread(vm, (void **)penv, NULL);
}

static jint jaunch_detach_current_thread(JavaVM *vm) {
    return (*vm)->DetachCurrentThread(vm);
}

static jint jaunch_destroy_vm(JavaVM *vm) {
    return (*vm)->DestroyJavaVM(vm);
}

static int jaunch_invoke_main(JNIEnv *env, const char *className, int argc, char **argv) {
    jclass mainClass = (*env)->FindClass(env, className);
    if (mainClass == NULL) return -1;

    jmethodID mainMethod = (*env)->GetStaticMethodID(env, mainClass, "main", "([Ljava/lang/String;)V");
    if (mainMethod == NULL) return -2;

    jclass stringClass = (*env)->FindClass(env, "java/lang/String");
    jobjectArray args = (*env)->NewObjectArray(env, argc, stringClass, NULL);
    for (int i = 0; i < argc; i++) {
        jstring s = (*env)->NewStringUTF(env, argv[i]);
        (*env)->SetObjectArrayElement(env, args, i, s);
    }

    jvalue callArgs[1];
    callArgs[0].l = args;
    (*env)->CallStaticVoidMethodA(env, mainClass, mainMethod, callArgs);

    if ((*env)->ExceptionCheck(env)) {
        (*env)->ExceptionDescribe(env);
        (*env)->ExceptionClear(env);
        return -3;
    }
    return 0;
}
*/
import "C"

import (
	"unsafe"
)

// jniVM bundles the JavaVM and JNIEnv pointers produced by CreateJavaVM,
// cached across JVM directives the way the original keeps cached_jvm.
type jniVM struct {
	vm  *C.JavaVM
	env *C.JNIEnv
}

// cgoJVMBackend is the real jvmBackend implementation, calling into JNI
// through the cgo helpers above.
type cgoJVMBackend struct{}

func (cgoJVMBackend) CreateJavaVM(libPath string, vmArgs []string) (jvmHandle, *SharedLibrary, error) {
	lib, err := LibOpen(libPath)
	if err != nil {
		return nil, nil, err
	}
	createFn, err := lib.Sym("JNI_CreateJavaVM")
	if err != nil {
		lib.Close()
		return nil, nil, err
	}

	cOptions := make([]*C.char, len(vmArgs))
	for i, a := range vmArgs {
		cOptions[i] = C.CString(a)
	}
	defer func() {
		for _, c := range cOptions {
			C.free(unsafe.Pointer(c))
		}
	}()

	var cOptionsPtr **C.char
	if len(cOptions) > 0 {
		cOptionsPtr = (**C.char)(unsafe.Pointer(&cOptions[0]))
	}

	var vm *C.JavaVM
	var env *C.JNIEnv
	rc := C.jaunch_create_vm(unsafe.Pointer(createFn), &vm, &env, C.jint(len(vmArgs)), cOptionsPtr)
	if rc != C.JNI_OK {
		lib.Close()
		return nil, nil, newLauncherError(ErrCreateJavaVM, "JNI_CreateJavaVM returned nonzero", nil)
	}
	return &jniVM{vm: vm, env: env}, lib, nil
}

func (cgoJVMBackend) AttachCurrentThread(handle jvmHandle) error {
	h := handle.(*jniVM)
	var env *C.JNIEnv
	rc := C.jaunch_attach_current_thread(h.vm, &env)
	if rc != C.JNI_OK {
		return newLauncherError(ErrCreateJavaVM, "AttachCurrentThread returned nonzero", nil)
	}
	h.env = env
	return nil
}

func (cgoJVMBackend) InvokeMain(handle jvmHandle, mainClass string, mainArgs []string) error {
	h := handle.(*jniVM)

	cClass := C.CString(classNameToJNI(mainClass))
	defer C.free(unsafe.Pointer(cClass))

	cArgs := make([]*C.char, len(mainArgs))
	for i, a := range mainArgs {
		cArgs[i] = C.CString(a)
	}
	defer func() {
		for _, c := range cArgs {
			C.free(unsafe.Pointer(c))
		}
	}()
	var cArgsPtr **C.char
	if len(cArgs) > 0 {
		cArgsPtr = (**C.char)(unsafe.Pointer(&cArgs[0]))
	}

	rc := C.jaunch_invoke_main(h.env, cClass, C.int(len(mainArgs)), cArgsPtr)
	switch rc {
	case 0:
		return nil
	case -1:
		return newLauncherError(ErrFindClass, "FindClass "+mainClass, nil)
	case -2:
		return newLauncherError(ErrGetStaticMethodID, "GetStaticMethodID main "+mainClass, nil)
	default:
		return newLauncherError(ErrRuntimeCrash, "uncaught Java exception in "+mainClass, nil)
	}
}

func (cgoJVMBackend) DetachCurrentThread(handle jvmHandle) error {
	h := handle.(*jniVM)
	if rc := C.jaunch_detach_current_thread(h.vm); rc != C.JNI_OK {
		return newLauncherError(ErrRuntimeCrash, "DetachCurrentThread returned nonzero", nil)
	}
	return nil
}

func (cgoJVMBackend) DestroyJavaVM(handle jvmHandle) error {
	h := handle.(*jniVM)
	if rc := C.jaunch_destroy_vm(h.vm); rc != C.JNI_OK {
		return newLauncherError(ErrRuntimeCrash, "DestroyJavaVM returned nonzero", nil)
	}
	return nil
}

// classNameToJNI converts a dot-separated class name to the slash-separated
// form FindClass expects; configurators are documented to already emit
// slash-separated names, but this keeps either convention working.
func classNameToJNI(name string) string {
	out := []byte(name)
	for i, c := range out {
		if c == '.' {
			out[i] = '/'
		}
	}
	return string(out)
}
